package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

type ShareRepository struct {
	db *sql.DB
}

func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, s *model.FileShare) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO file_shares
		(id, file_id, shared_with, shared_email, permission, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.FileID, s.SharedWith, nullString(s.SharedEmail), s.Permission,
		s.ExpiresAt, s.CreatedBy, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}
	return nil
}

func (r *ShareRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FileShare, error) {
	s := &model.FileShare{}
	var email sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, file_id, shared_with, shared_email, permission, expires_at,
		       created_by, created_at, revoked_at, revoked_by
		FROM file_shares WHERE id = $1`, id).
		Scan(&s.ID, &s.FileID, &s.SharedWith, &email, &s.Permission, &s.ExpiresAt,
			&s.CreatedBy, &s.CreatedAt, &s.RevokedAt, &s.RevokedBy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	s.SharedEmail = email.String
	return s, nil
}

func (r *ShareRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*model.FileShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_id, shared_with, shared_email, permission, expires_at,
		       created_by, created_at, revoked_at, revoked_by
		FROM file_shares
		WHERE file_id = $1
		ORDER BY created_at`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*model.FileShare
	for rows.Next() {
		s := &model.FileShare{}
		var email sql.NullString
		if err := rows.Scan(&s.ID, &s.FileID, &s.SharedWith, &email, &s.Permission,
			&s.ExpiresAt, &s.CreatedBy, &s.CreatedAt, &s.RevokedAt, &s.RevokedBy); err != nil {
			return nil, err
		}
		s.SharedEmail = email.String
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *ShareRepository) Revoke(ctx context.Context, id, actor uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE file_shares SET revoked_at = $1, revoked_by = $2 WHERE id = $3 AND revoked_at IS NULL`,
		at, actor, id)
	return err
}
