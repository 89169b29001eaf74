package batch

import (
	"fmt"
	"strings"

	"github.com/studypointin/studypoint/internal/domain/models"
)

// MaxFileBytes is the client-side size ceiling for file items. Files over the
// ceiling are excluded at selection time with a non-fatal warning; the rest
// of the batch is unaffected. The upload endpoint enforces its own, smaller
// request-body limit independently.
const MaxFileBytes = 10 << 20 // 10 MiB

// Validate checks one item against the submission rules and returns the first
// failing rule's message, or nil if the item is submittable.
//
// The rules run in a fixed order so exactly one error surfaces per item at a
// time. Validation is pure: no I/O, same result for the same item every time.
func Validate(it *Item) error {
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("title is required")
	}

	switch src := it.Source.(type) {
	case FileSource:
		if src.SpoolPath == "" {
			return fmt.Errorf("file is missing")
		}
	case LinkSource:
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("remote link is required")
		}
		if strings.TrimSpace(src.FileName) == "" {
			return fmt.Errorf("file name is required for the remote link")
		}
	default:
		return fmt.Errorf("file is missing")
	}

	if strings.TrimSpace(it.SubjectID) == "" {
		return fmt.Errorf("subject is required")
	}

	if models.ChapterRequired(it.Kind) && strings.TrimSpace(it.ChapterID) == "" {
		return fmt.Errorf("chapter is required for %s", models.KindLabel(it.Kind))
	}

	return nil
}

// ValidateAll runs Validate over every item, in order, and returns the first
// failure annotated with the item's position. All items are checked before
// any submission begins; a single failure blocks the whole batch.
func ValidateAll(items []Item) error {
	for i := range items {
		if err := Validate(&items[i]); err != nil {
			label := strings.TrimSpace(items[i].Title)
			if label == "" {
				label = "untitled"
			}
			return fmt.Errorf("item %d (%s): %w", i+1, label, err)
		}
	}
	return nil
}
