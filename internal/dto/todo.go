package dto

import "time"

type CreateTodoRequest struct {
	Text string `json:"text" binding:"required,min=1"`
}

// UpdateTodoRequest is a partial update: absent fields are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text" binding:"omitempty,min=1"`
	Completed *bool   `json:"completed"`
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
