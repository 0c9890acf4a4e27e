package model

import (
	"time"

	"github.com/google/uuid"
)

// FileCollaborator эфемерное состояние участника сессии редактирования.
// Не хранится в базе; живёт пока открыто соединение.
type FileCollaborator struct {
	FileID    uuid.UUID `json:"file_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	CursorPos int       `json:"cursor_pos"`
	IsActive  bool      `json:"is_active"`
	LastSeen  time.Time `json:"last_seen"`
}
