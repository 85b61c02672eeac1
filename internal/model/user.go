package model

import "time"

// User is an account able to own remote todos.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
