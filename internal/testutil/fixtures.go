package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context. Use this
// in handler tests that read chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateSubject inserts an active subject and returns it.
func (f *Fixtures) CreateSubject(ctx context.Context, name, slug string) models.Subject {
	f.t.Helper()

	now := time.Now().UTC()
	subj := models.Subject{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      slug,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if _, err := f.db.Collection("subjects").InsertOne(ctx, subj); err != nil {
		f.t.Fatalf("create test subject: %v", err)
	}
	return subj
}

// CreateChapter inserts a chapter under the given subject.
func (f *Fixtures) CreateChapter(ctx context.Context, subjectID primitive.ObjectID, title string, number int) models.Chapter {
	f.t.Helper()

	now := time.Now().UTC()
	ch := models.Chapter{
		ID:            primitive.NewObjectID(),
		SubjectID:     subjectID,
		Title:         title,
		TitleCI:       text.Fold(title),
		ChapterNumber: number,
		CreatedAt:     now,
		UpdatedAt:     &now,
	}
	if _, err := f.db.Collection("chapters").InsertOne(ctx, ch); err != nil {
		f.t.Fatalf("create test chapter: %v", err)
	}
	return ch
}

// CreateMaterial inserts an active file-backed material of the given kind.
func (f *Fixtures) CreateMaterial(ctx context.Context, title, kind string, subjectID primitive.ObjectID, chapterID *primitive.ObjectID) models.Material {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Material{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Kind:      kind,
		SubjectID: subjectID,
		ChapterID: chapterID,
		FilePath:  "materials/2026/01/test-" + primitive.NewObjectID().Hex() + ".pdf",
		FileName:  "test.pdf",
		FileSize:  1024,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if _, err := f.db.Collection("materials").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test material: %v", err)
	}
	return m
}

// CreateAdmin inserts an active admin with the given password.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		Role:         "admin",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    &now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test admin: %v", err)
	}
	return u
}
