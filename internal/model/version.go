package model

import (
	"time"

	"github.com/google/uuid"
)

// FileVersion неизменяемый снимок контента файла. Номера версий строго
// возрастают на единицу в рамках одного файла, начиная с 1.
type FileVersion struct {
	ID                uuid.UUID `json:"id"`
	FileID            uuid.UUID `json:"file_id"`
	VersionNumber     int       `json:"version_number"`
	Content           string    `json:"content,omitempty"`
	CompressedContent string    `json:"-"`
	Description       string    `json:"description,omitempty"`
	CreatedBy         uuid.UUID `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// DiffLineType тип строки в построчном сравнении версий
type DiffLineType string

const (
	DiffAdded     DiffLineType = "added"
	DiffRemoved   DiffLineType = "removed"
	DiffUnchanged DiffLineType = "unchanged"
)

// DiffLine строка результата сравнения двух версий
type DiffLine struct {
	Type DiffLineType `json:"type"`
	Text string       `json:"text"`
}
