// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a back-office account. The public site has no user accounts;
// only admins sign in, to curate content.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"`

	Email   string `bson:"email" json:"email"`
	EmailCI string `bson:"email_ci" json:"email_ci"` // unique index

	// Bcrypt hash of the password. Never serialized to JSON.
	PasswordHash string `bson:"password_hash" json:"-"`

	Role   string `bson:"role" json:"role"`     // "admin"
	Status string `bson:"status" json:"status"` // "active" or "disabled"

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
