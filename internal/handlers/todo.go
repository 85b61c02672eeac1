package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/dto"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/service"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// List returns the caller's todos, newest first.
func (h *TodoHandler) List(c *gin.Context) {
	list, err := h.svc.ListAll(c.Request.Context(), auth.OwnerFromContext(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTodosResponse{Items: todosToResponses(list)})
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), auth.OwnerFromContext(c), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todoToResponse(t))
}

func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	_, err := h.svc.Update(c.Request.Context(), auth.OwnerFromContext(c), id, model.Patch{Text: req.Text, Completed: req.Completed})
	if err != nil {
		todoError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.OwnerFromContext(c), id); err != nil {
		todoError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func todoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	default:
		internalError(c, err)
	}
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func todoToResponse(t model.RemoteTodo) dto.TodoResponse {
	return dto.TodoResponse{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CreatedByID: t.CreatedByID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func todosToResponses(list []model.RemoteTodo) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}
