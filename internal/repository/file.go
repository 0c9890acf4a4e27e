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

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, f *model.File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files
		(id, name, type, content, compressed_content, storage_path, storage_size, storage_mime,
		 workspace_id, folder_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		f.ID, f.Name, f.Type, nullString(f.Content), nullString(f.CompressedContent),
		nullString(f.StoragePath), f.StorageSize, nullString(f.StorageMime),
		f.WorkspaceID, f.FolderID, f.CreatedBy, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.File, error) {
	f := &model.File{}
	var content, compressed, storagePath, storageMime sql.NullString
	var storageSize sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, content, compressed_content, storage_path, storage_size, storage_mime,
		       workspace_id, folder_id, created_by, created_at, updated_at, deleted_at, deleted_by
		FROM files WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.Type, &content, &compressed, &storagePath, &storageSize, &storageMime,
			&f.WorkspaceID, &f.FolderID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt, &f.DeletedBy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	f.Content = content.String
	f.CompressedContent = compressed.String
	f.StoragePath = storagePath.String
	f.StorageMime = storageMime.String
	f.StorageSize = storageSize.Int64
	return f, nil
}

func (r *FileRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*model.File, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, storage_path, storage_size, storage_mime,
		       workspace_id, folder_id, created_by, created_at, updated_at
		FROM files
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY name, created_at
		LIMIT $2`, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.File
	for rows.Next() {
		f := &model.File{}
		var storagePath, storageMime sql.NullString
		var storageSize sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &storagePath, &storageSize, &storageMime,
			&f.WorkspaceID, &f.FolderID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.StoragePath = storagePath.String
		f.StorageMime = storageMime.String
		f.StorageSize = storageSize.Int64
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *FileRepository) UpdateContent(ctx context.Context, id uuid.UUID, content, compressed string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE files SET content = $1, compressed_content = $2, updated_at = $3 WHERE id = $4`,
		nullString(content), nullString(compressed), time.Now(), id)
	return err
}

func (r *FileRepository) SoftDelete(ctx context.Context, id, actor uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE files SET deleted_at = $1, deleted_by = $2 WHERE id = $3 AND deleted_at IS NULL`,
		at, actor, id)
	return err
}

func (r *FileRepository) Close() error {
	return r.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
