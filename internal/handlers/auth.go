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

// AuthHandler handles login, register and session lookup.
type AuthHandler struct {
	issuer  *auth.Issuer
	userSvc *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(issuer *auth.Issuer, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{issuer: issuer, userSvc: userSvc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid username or password"})
			return
		}
		internalError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "username and password required"})
			return
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "username already taken"})
			return
		}
		internalError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

// Session reports the user behind the bearer token. Runs behind RequireSession.
func (h *AuthHandler) Session(c *gin.Context) {
	id, _ := auth.IdentityFromContext(c)
	user, err := h.userSvc.Get(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authorization required"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{User: userToResponse(user)})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user model.User) {
	token, exp, err := h.issuer.Issue(user.ID, user.Username)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(status, dto.AuthResponse{Token: token, ExpiresAt: exp, User: userToResponse(user)})
}

func userToResponse(u model.User) dto.UserResponse {
	return dto.UserResponse{ID: strconv.FormatInt(u.ID, 10), Username: u.Username}
}
