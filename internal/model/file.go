package model

import (
	"time"

	"github.com/google/uuid"
)

// FileType тип файла из фиксированного перечисления
type FileType string

const (
	FileTypeFolder   FileType = "folder"
	FileTypeList     FileType = "list"
	FileTypeDoc      FileType = "doc"
	FileTypeMarkdown FileType = "markdown"
	FileTypePDF      FileType = "pdf"
	FileTypePNG      FileType = "png"
	FileTypeJPG      FileType = "jpg"
	FileTypeGIF      FileType = "gif"
	FileTypeEPUB     FileType = "epub"
	FileTypeBinary   FileType = "binary"
)

// File запись файла или документа рабочего пространства.
// Для неудалённой записи выполняется ровно одно из двух: либо контент
// хранится в Content (текстовые типы), либо байты лежат на диске и
// запись ссылается на них через StoragePath/StorageSize/StorageMime.
type File struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Type              FileType   `json:"type"`
	Content           string     `json:"content,omitempty"`
	CompressedContent string     `json:"-"`
	StoragePath       string     `json:"storage_path,omitempty"`
	StorageSize       int64      `json:"storage_size,omitempty"`
	StorageMime       string     `json:"storage_mime,omitempty"`
	WorkspaceID       uuid.UUID  `json:"workspace_id"`
	FolderID          *uuid.UUID `json:"folder_id,omitempty"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
	DeletedBy         *uuid.UUID `json:"-"`
}

// DiskBacked сообщает, хранятся ли байты файла на диске
func (f *File) DiskBacked() bool {
	return f.StoragePath != ""
}

// Inline сообщает, хранится ли контент файла в базе
func (f *File) Inline() bool {
	return f.Content != "" || f.CompressedContent != ""
}

// UploadedFile файл из multipart формы
type UploadedFile struct {
	Filename string
	Mime     string
	Data     []byte
	Size     int64
}
