// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/studypointin/studypoint/internal/app/system/status"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new back-office user, hashing the supplied password.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	now := time.Now().UTC()

	u.ID = primitive.NewObjectID()
	u.FullName = strings.TrimSpace(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = text.Fold(u.Email)
	if u.Role == "" {
		u.Role = "admin"
	}
	if u.Status == "" {
		u.Status = status.Active
	}
	u.CreatedAt = now
	u.UpdatedAt = &now

	if u.FullName == "" {
		return models.User{}, mongo.CommandError{Message: "full name is required"}
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return models.User{}, mongo.CommandError{Message: "a valid email is required"}
	}
	if len(password) < 8 {
		return models.User{}, mongo.CommandError{Message: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks a user up by folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID returns a user by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies the email/password pair against an active account.
// It returns ErrNotFound for unknown emails, disabled accounts, and wrong
// passwords alike, so callers cannot distinguish which part failed.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	if u.Status != status.Active {
		return models.User{}, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// SetPassword replaces the password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	if len(password) < 8 {
		return mongo.CommandError{Message: "password must be at least 8 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// SetStatus enables or disables an account.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st string) error {
	if !status.IsValid(st) {
		return mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     st,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
