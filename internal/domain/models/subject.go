// internal/domain/models/subject.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subject is one Class 10 subject (Science, Mathematics, Social Science, ...).
// Subjects are the top-level navigation unit of the public site and the first
// required reference on every material.
type Subject struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Slug   string             `bson:"slug" json:"slug"`       // URL segment, unique

	Status string `bson:"status" json:"status"` // "active" or "disabled"

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
