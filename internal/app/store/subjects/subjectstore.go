// internal/app/store/subjects/subjectstore.go
package subjectstore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicate = errors.New("a subject with this name or slug already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("subjects")}
}

// Create inserts a new Subject, deriving NameCI and the slug when absent.
func (s *Store) Create(ctx context.Context, subj models.Subject) (models.Subject, error) {
	now := time.Now().UTC()

	subj.ID = primitive.NewObjectID()
	subj.Name = strings.TrimSpace(subj.Name)
	subj.NameCI = text.Fold(subj.Name)
	if subj.Slug == "" {
		subj.Slug = Slugify(subj.Name)
	}
	if subj.Status == "" {
		subj.Status = status.Active
	}
	subj.CreatedAt = now
	subj.UpdatedAt = &now

	if subj.Name == "" {
		return models.Subject{}, mongo.CommandError{Message: "name is required"}
	}
	if !status.IsValid(subj.Status) {
		return models.Subject{}, mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
	}

	if _, err := s.c.InsertOne(ctx, subj); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Subject{}, ErrDuplicate
		}
		return models.Subject{}, err
	}
	return subj, nil
}

// Update modifies mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut models.Subject) error {
	set := bson.M{}

	if name := strings.TrimSpace(mut.Name); name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if mut.Slug != "" {
		set["slug"] = mut.Slug
	}
	if mut.Status != "" {
		if !status.IsValid(mut.Status) {
			return mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
		}
		set["status"] = mut.Status
	}

	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = time.Now().UTC()

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID returns a subject by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Subject, error) {
	var subj models.Subject
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&subj)
	if err != nil {
		return models.Subject{}, err
	}
	return subj, nil
}

// GetBySlug returns a subject by its URL slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Subject, error) {
	var subj models.Subject
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&subj)
	if err != nil {
		return models.Subject{}, err
	}
	return subj, nil
}

// ListActive returns the active subjects sorted by name, for the public site.
func (s *Store) ListActive(ctx context.Context) ([]models.Subject, error) {
	return s.Find(ctx, bson.M{"status": status.Active},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

// Find returns subjects matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Subject, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Subject
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of subjects matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Delete removes a subject by ID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Slugify turns a display name into a URL segment: lowercase, diacritics
// folded, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	folded := text.Fold(name)
	var b strings.Builder
	lastHyphen := true
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
