package model

import (
	"time"

	"github.com/google/uuid"
)

// Folder папка рабочего пространства. Дерево самоссылающееся через
// ParentID (nil — корень); циклы запрещены и проверяются при перемещении.
type Folder struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Position    int        `json:"position"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   *uuid.UUID `json:"-"`
}
