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

type FolderRepository struct {
	db *sql.DB
}

func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, f *model.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, color, parent_id, workspace_id, position, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Name, nullString(f.Color), f.ParentID, f.WorkspaceID, f.Position, f.CreatedBy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	f := &model.Folder{}
	var color sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, parent_id, workspace_id, position, created_by, created_at, deleted_at, deleted_by
		FROM folders WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &color, &f.ParentID, &f.WorkspaceID, &f.Position,
			&f.CreatedBy, &f.CreatedAt, &f.DeletedAt, &f.DeletedBy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	f.Color = color.String
	return f, nil
}

func (r *FolderRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*model.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, parent_id, workspace_id, position, created_by, created_at
		FROM folders
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY position, name`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*model.Folder
	for rows.Next() {
		f := &model.Folder{}
		var color sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &color, &f.ParentID, &f.WorkspaceID,
			&f.Position, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Color = color.String
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (r *FolderRepository) Update(ctx context.Context, f *model.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE folders SET name = $1, color = $2, parent_id = $3, position = $4 WHERE id = $5`,
		f.Name, nullString(f.Color), f.ParentID, f.Position, f.ID)
	return err
}

func (r *FolderRepository) SoftDelete(ctx context.Context, id, actor uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE folders SET deleted_at = $1, deleted_by = $2 WHERE id = $3 AND deleted_at IS NULL`,
		at, actor, id)
	return err
}
