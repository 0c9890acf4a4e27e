package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

type VersionRepository struct {
	db *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) Create(ctx context.Context, v *model.FileVersion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO file_versions
		(id, file_id, version_number, content, compressed_content, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.FileID, v.VersionNumber, nullString(v.Content), nullString(v.CompressedContent),
		nullString(v.Description), v.CreatedBy, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

func (r *VersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FileVersion, error) {
	v := &model.FileVersion{}
	var content, compressed, description sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, file_id, version_number, content, compressed_content, description, created_by, created_at
		FROM file_versions WHERE id = $1`, id).
		Scan(&v.ID, &v.FileID, &v.VersionNumber, &content, &compressed, &description, &v.CreatedBy, &v.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	v.Content = content.String
	v.CompressedContent = compressed.String
	v.Description = description.String
	return v, nil
}

// MaxVersionNumber наибольший номер версии файла; 0, если версий ещё нет
func (r *VersionRepository) MaxVersionNumber(ctx context.Context, fileID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(version_number) FROM file_versions WHERE file_id = $1`, fileID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max version number: %w", err)
	}
	return int(max.Int64), nil
}

func (r *VersionRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*model.FileVersion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_id, version_number, content, compressed_content, description, created_by, created_at
		FROM file_versions
		WHERE file_id = $1
		ORDER BY version_number DESC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*model.FileVersion
	for rows.Next() {
		v := &model.FileVersion{}
		var content, compressed, description sql.NullString
		if err := rows.Scan(&v.ID, &v.FileID, &v.VersionNumber, &content, &compressed,
			&description, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.Content = content.String
		v.CompressedContent = compressed.String
		v.Description = description.String
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Latest последняя по номеру версия файла; nil, если версий нет
func (r *VersionRepository) Latest(ctx context.Context, fileID uuid.UUID) (*model.FileVersion, error) {
	v := &model.FileVersion{}
	var content, compressed, description sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, file_id, version_number, content, compressed_content, description, created_by, created_at
		FROM file_versions
		WHERE file_id = $1
		ORDER BY version_number DESC
		LIMIT 1`, fileID).
		Scan(&v.ID, &v.FileID, &v.VersionNumber, &content, &compressed, &description, &v.CreatedBy, &v.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}
	v.Content = content.String
	v.CompressedContent = compressed.String
	v.Description = description.String
	return v, nil
}
