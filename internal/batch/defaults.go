package batch

import "github.com/studypointin/studypoint/internal/domain/models"

// Defaults is the shared scratch template used to pre-fill newly created
// items and, on explicit command, bulk-overwrite the metadata fields of every
// item in the session. It never carries method-specific fields or titles.
type Defaults struct {
	Kind          string
	SubjectID     string
	ChapterID     string
	Year          string
	SeedViews     int64
	SeedDownloads int64
}

// NewDefaults returns the initial template.
func NewDefaults() Defaults {
	return Defaults{Kind: models.DefaultContentKind}
}

// SetKind changes the template's content kind and cascades: the chapter
// selection is cleared because chapter relevance depends on the kind, and
// the year is cleared when the new kind is chapter-scoped. The same cascade
// applies when an individual item's kind is edited (see cascadeKind).
func (d *Defaults) SetKind(kind string) {
	if kind == d.Kind {
		return
	}
	d.Kind = kind
	d.ChapterID = ""
	if models.ChapterRequired(kind) {
		d.Year = ""
	}
}

// applyTo overwrites the item's metadata fields with the template's values.
// Title and the content source are left untouched.
func (d Defaults) applyTo(it *Item) {
	it.Kind = d.Kind
	it.SubjectID = d.SubjectID
	it.ChapterID = d.ChapterID
	it.Year = d.Year
	it.SeedViews = d.SeedViews
	it.SeedDownloads = d.SeedDownloads
}

// cascadeKind applies a kind change to an item with the same clearing rules
// as Defaults.SetKind.
func cascadeKind(it *Item, kind string) {
	if kind == it.Kind {
		return
	}
	it.Kind = kind
	it.ChapterID = ""
	if models.ChapterRequired(kind) {
		it.Year = ""
	}
}
