// internal/domain/models/material.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Material is one unit of study content: an uploaded file or a remote link,
// plus the metadata that places it in the syllabus.
//
// The content source is mutually exclusive: either the file fields
// (FilePath/FileName/FileSize) or the remote fields (RemoteLink/RemoteFileName)
// are set, never both. Chapter-scoped kinds carry a ChapterID; year-scoped
// kinds (sample papers, PYQs) carry a Year instead.
type Material struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped

	Kind      string              `bson:"kind" json:"kind"` // see contentkinds.go
	SubjectID primitive.ObjectID  `bson:"subject_id" json:"subject_id"`
	ChapterID *primitive.ObjectID `bson:"chapter_id,omitempty" json:"chapter_id,omitempty"`
	Year      string              `bson:"year,omitempty" json:"year,omitempty"` // four digits, e.g. "2024"

	// File storage fields - set when content is an uploaded file
	FilePath string `bson:"file_path,omitempty" json:"file_path,omitempty"` // storage key (local or bucket)
	FileName string `bson:"file_name,omitempty" json:"file_name,omitempty"` // original filename
	FileSize int64  `bson:"file_size,omitempty" json:"file_size,omitempty"` // size in bytes

	// Remote link fields - set when content already lives in external storage
	RemoteLink     string `bson:"remote_link,omitempty" json:"remote_link,omitempty"`
	RemoteFileName string `bson:"remote_file_name,omitempty" json:"remote_file_name,omitempty"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Display counters. Seeded at creation time (bulk uploads may pre-populate
	// them) and incremented as visitors view/download the material.
	ViewCount     int64 `bson:"view_count" json:"view_count"`
	DownloadCount int64 `bson:"download_count" json:"download_count"`

	Status string `bson:"status" json:"status"` // "active" or "disabled"

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	CreatedByID   *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedByName string              `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`
}

// HasFile returns true if this material has an uploaded file.
func (m *Material) HasFile() bool {
	return m.FilePath != ""
}

// HasLink returns true if this material points at a remote file.
func (m *Material) HasLink() bool {
	return m.RemoteLink != ""
}
