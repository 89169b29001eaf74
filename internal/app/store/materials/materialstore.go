// internal/app/store/materials/materialstore.go
package materialstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/urlutil"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("materials")}
}

// Create inserts a new Material, setting TitleCI and timestamps.
//
// The content source is mutually exclusive: either the file fields or the
// remote-link fields, never both. Chapter-scoped kinds must carry a chapter;
// year-scoped kinds must carry a four-digit year instead.
func (s *Store) Create(ctx context.Context, m models.Material) (models.Material, error) {
	now := time.Now().UTC()

	m.ID = primitive.NewObjectID()
	m.TitleCI = text.Fold(m.Title)
	if m.Status == "" {
		m.Status = status.Active
	}
	if m.Kind == "" {
		m.Kind = models.DefaultContentKind
	}
	m.CreatedAt = now
	m.UpdatedAt = &now

	if strings.TrimSpace(m.Title) == "" {
		return models.Material{}, mongo.CommandError{Message: "title is required"}
	}
	if !models.IsValidContentKind(m.Kind) {
		return models.Material{}, mongo.CommandError{Message: "unknown content type"}
	}
	if !status.IsValid(m.Status) {
		return models.Material{}, mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
	}
	if m.SubjectID == primitive.NilObjectID {
		return models.Material{}, mongo.CommandError{Message: "subject_id is required"}
	}

	if models.ChapterRequired(m.Kind) {
		if m.ChapterID == nil || *m.ChapterID == primitive.NilObjectID {
			return models.Material{}, mongo.CommandError{Message: "chapter_id is required for " + models.KindLabel(m.Kind)}
		}
	} else {
		if !validYear(m.Year) {
			return models.Material{}, mongo.CommandError{Message: "year is required for " + models.KindLabel(m.Kind)}
		}
		m.ChapterID = nil
	}

	hasFile := strings.TrimSpace(m.FilePath) != ""
	hasLink := strings.TrimSpace(m.RemoteLink) != ""
	if !hasFile && !hasLink {
		return models.Material{}, mongo.CommandError{Message: "either a file or a remote link is required"}
	}
	if hasFile && hasLink {
		return models.Material{}, mongo.CommandError{Message: "cannot have both a file and a remote link"}
	}
	if hasLink {
		if !urlutil.IsValidAbsHTTPURL(m.RemoteLink) {
			return models.Material{}, mongo.CommandError{Message: "remote link must be a valid http(s) URL"}
		}
		if strings.TrimSpace(m.RemoteFileName) == "" {
			return models.Material{}, mongo.CommandError{Message: "file name is required for a remote link"}
		}
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Material{}, err
	}
	return m, nil
}

// Update modifies mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut models.Material) error {
	set := bson.M{}

	if strings.TrimSpace(mut.Title) != "" {
		set["title"] = mut.Title
		set["title_ci"] = text.Fold(mut.Title)
	}
	set["description"] = mut.Description

	if mut.Status != "" {
		if !status.IsValid(mut.Status) {
			return mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
		}
		set["status"] = mut.Status
	}

	// Source updates: switching method clears the other side's fields.
	if mut.RemoteLink != "" {
		if !urlutil.IsValidAbsHTTPURL(mut.RemoteLink) {
			return mongo.CommandError{Message: "remote link must be a valid http(s) URL"}
		}
		set["remote_link"] = mut.RemoteLink
		set["remote_file_name"] = mut.RemoteFileName
		set["file_path"] = ""
		set["file_name"] = ""
		set["file_size"] = int64(0)
	}
	if mut.FilePath != "" {
		set["file_path"] = mut.FilePath
		set["file_name"] = mut.FileName
		set["file_size"] = mut.FileSize
		set["remote_link"] = ""
		set["remote_file_name"] = ""
	}

	set["updated_at"] = time.Now().UTC()

	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// GetByID returns a material by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Material, error) {
	var m models.Material
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		return models.Material{}, err
	}
	return m, nil
}

// Delete removes a material by ID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListChapterContent returns active materials of a chapter-scoped kind for a
// chapter, newest first.
func (s *Store) ListChapterContent(ctx context.Context, kind string, subjectID, chapterID primitive.ObjectID) ([]models.Material, error) {
	return s.Find(ctx, bson.M{
		"kind":       kind,
		"subject_id": subjectID,
		"chapter_id": chapterID,
		"status":     status.Active,
	}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
}

// ListYearContent returns active materials of a year-scoped kind for a
// subject, most recent year first.
func (s *Store) ListYearContent(ctx context.Context, kind string, subjectID primitive.ObjectID) ([]models.Material, error) {
	return s.Find(ctx, bson.M{
		"kind":       kind,
		"subject_id": subjectID,
		"status":     status.Active,
	}, options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "_id", Value: -1}}))
}

// Find returns materials matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Material, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var materials []models.Material
	if err := cur.All(ctx, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// Count returns the number of materials matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// CountBySubject returns the number of active materials per subject and
// kind, for the landing page's subject cards.
func (s *Store) CountBySubject(ctx context.Context) (map[primitive.ObjectID]map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": status.Active}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"subject": "$subject_id", "kind": "$kind"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	type row struct {
		ID struct {
			Subject primitive.ObjectID `bson:"subject"`
			Kind    string             `bson:"kind"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}

	out := make(map[primitive.ObjectID]map[string]int64)
	for cur.Next(ctx) {
		var r row
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		kinds := out[r.ID.Subject]
		if kinds == nil {
			kinds = make(map[string]int64)
			out[r.ID.Subject] = kinds
		}
		kinds[r.ID.Kind] = r.Count
	}
	return out, cur.Err()
}

// IncrementViews bumps the view counter shown on listing pages.
func (s *Store) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"view_count": 1}})
	return err
}

// IncrementDownloads bumps the download counter.
func (s *Store) IncrementDownloads(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"download_count": 1}})
	return err
}

// validYear accepts exactly four digits.
func validYear(y string) bool {
	if len(y) != 4 {
		return false
	}
	for _, r := range y {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
