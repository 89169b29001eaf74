// internal/app/store/chapters/chapterstore.go
package chapterstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateNumber = errors.New("this subject already has a chapter with this number")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chapters")}
}

// Create inserts a new Chapter, setting TitleCI and timestamps.
func (s *Store) Create(ctx context.Context, ch models.Chapter) (models.Chapter, error) {
	now := time.Now().UTC()

	ch.ID = primitive.NewObjectID()
	ch.Title = strings.TrimSpace(ch.Title)
	ch.TitleCI = text.Fold(ch.Title)
	ch.CreatedAt = now
	ch.UpdatedAt = &now

	if ch.Title == "" {
		return models.Chapter{}, mongo.CommandError{Message: "title is required"}
	}
	if ch.SubjectID == primitive.NilObjectID {
		return models.Chapter{}, mongo.CommandError{Message: "subject_id is required"}
	}
	if ch.ChapterNumber <= 0 {
		return models.Chapter{}, mongo.CommandError{Message: "chapter_number must be positive"}
	}

	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Chapter{}, ErrDuplicateNumber
		}
		return models.Chapter{}, err
	}
	return ch, nil
}

// Update modifies mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut models.Chapter) error {
	set := bson.M{}

	if title := strings.TrimSpace(mut.Title); title != "" {
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if mut.ChapterNumber > 0 {
		set["chapter_number"] = mut.ChapterNumber
	}

	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = time.Now().UTC()

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

// GetByID returns a chapter by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error) {
	var ch models.Chapter
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ch)
	if err != nil {
		return models.Chapter{}, err
	}
	return ch, nil
}

// ListBySubject returns a subject's chapters in syllabus order.
func (s *Store) ListBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]models.Chapter, error) {
	cur, err := s.c.Find(ctx, bson.M{"subject_id": subjectID},
		options.Find().SetSort(bson.D{{Key: "chapter_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Chapter
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of chapters matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Delete removes a chapter by ID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
