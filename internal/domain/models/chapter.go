// internal/domain/models/chapter.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter is one syllabus chapter within a Subject. Chapter-scoped content
// kinds (notes, important questions, MCQs, summaries, mind maps) reference a
// chapter; year-scoped kinds (sample papers, PYQs) do not.
type Chapter struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubjectID primitive.ObjectID `bson:"subject_id" json:"subject_id"`

	Title         string `bson:"title" json:"title"`
	TitleCI       string `bson:"title_ci" json:"title_ci"`
	ChapterNumber int    `bson:"chapter_number" json:"chapter_number"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
