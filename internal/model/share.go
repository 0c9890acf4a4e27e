package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission уровень доступа к файлу, упорядочен: view < edit < admin
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

// Rank числовой ранг уровня доступа для сравнения
func (p Permission) Rank() int {
	switch p {
	case PermissionView:
		return 1
	case PermissionEdit:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

// Covers сообщает, покрывает ли уровень p требуемый уровень required
func (p Permission) Covers(required Permission) bool {
	return p.Rank() >= required.Rank()
}

// FileShare выданный доступ к файлу. Получатель — либо зарегистрированный
// пользователь (SharedWith), либо голый email (SharedEmail). Отозванный
// доступ не действует независимо от срока.
type FileShare struct {
	ID          uuid.UUID  `json:"id"`
	FileID      uuid.UUID  `json:"file_id"`
	SharedWith  *uuid.UUID `json:"shared_with,omitempty"`
	SharedEmail string     `json:"shared_email,omitempty"`
	Permission  Permission `json:"permission"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	RevokedBy   *uuid.UUID `json:"-"`
}

// Active сообщает, действует ли доступ на момент now
func (s *FileShare) Active(now time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}
	return true
}
