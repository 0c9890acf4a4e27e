package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email,omitempty"`
	Password    string    `json:"-"`
	Token       string    `json:"-"`
	TokenExpiry time.Time `json:"-"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}
