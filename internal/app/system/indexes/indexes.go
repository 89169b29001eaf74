// Package indexes reconciles the MongoDB indexes the app relies on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent; errors
// are aggregated so every problem is visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureSubjects(ctx, db); err != nil {
		problems = append(problems, "subjects: "+err.Error())
	}
	if err := ensureChapters(ctx, db); err != nil {
		problems = append(problems, "chapters: "+err.Error())
	}
	if err := ensureMaterials(ctx, db); err != nil {
		problems = append(problems, "materials: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet reconciles the desired indexes for one collection: reuse an
// existing index with the same keys and options, rename when only the name
// differs, drop and recreate when options differ, otherwise create.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			// Name or options differ: drop and recreate with the desired shape.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index, duplicates present", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate detector that works across vendors.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email is the login identifier and must be unique.
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_users_role_status"),
		},
	})
}

func ensureSubjects(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("subjects")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// No duplicate subject names (case/diacritics folded via name_ci).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_subjects_nameci"),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_subjects_slug"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_subjects_status_nameci__id"),
		},
	})
}

func ensureChapters(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("chapters")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One chapter number per subject.
		{
			Keys:    bson.D{{Key: "subject_id", Value: 1}, {Key: "chapter_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_chapters_subject_number"),
		},
		{
			Keys:    bson.D{{Key: "subject_id", Value: 1}, {Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("idx_chapters_subject_titleci"),
		},
	})
}

func ensureMaterials(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("materials")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Listing pages filter by kind and subject, then chapter or year.
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "chapter_id", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_materials_kind_subject_chapter__id"),
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "year", Value: -1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_materials_kind_subject_year__id"),
		},
		// Admin list search and sort.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_materials_status_titleci__id"),
		},
	})
}
