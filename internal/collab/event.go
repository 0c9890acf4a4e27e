package collab

import "workspace-server/internal/model"

// Типы событий от клиента
const (
	EventJoinFile      = "join-file"
	EventLeaveFile     = "leave-file"
	EventContentChange = "content-change"
	EventCursorMove    = "cursor-move"
	EventTyping        = "typing"
)

// Типы событий к клиенту
const (
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventActiveUsers    = "active-users"
	EventContentUpdated = "content-updated"
	EventCursorUpdated  = "cursor-updated"
)

// Event сообщение канала присутствия. Одна структура на оба направления;
// незаполненные поля опускаются при сериализации.
type Event struct {
	Type     string                   `json:"type"`
	FileID   string                   `json:"file_id,omitempty"`
	UserID   string                   `json:"user_id,omitempty"`
	UserName string                   `json:"user_name,omitempty"`
	Content  string                   `json:"content,omitempty"`
	Position int                      `json:"position,omitempty"`
	IsTyping bool                     `json:"is_typing,omitempty"`
	Users    []model.FileCollaborator `json:"users,omitempty"`
}
