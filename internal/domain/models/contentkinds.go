// internal/domain/models/contentkinds.go
package models

// Canonical content kind identifiers.
//
// These values are stored in the database in the Material.Kind field and are
// used throughout the application as stable keys: by the public listing pages,
// by the upload endpoint, and by the bulk-upload pipeline's validator.
const (
	KindNotes              = "notes"
	KindImportantQuestions = "important_questions"
	KindMCQs               = "mcqs"
	KindSummary            = "summary"
	KindMindMap            = "mind_map"
	KindSamplePaper        = "sample_paper"
	KindPYQ                = "pyq"
)

// ContentKinds is the full set of allowed content kind identifiers.
//
// This slice is the single source of truth for validation and for the kind
// select menus in the admin forms.
var ContentKinds = []string{
	KindNotes,
	KindImportantQuestions,
	KindMCQs,
	KindSummary,
	KindMindMap,
	KindSamplePaper,
	KindPYQ,
}

// DefaultContentKind is used when no specific kind is provided.
const DefaultContentKind = KindNotes

// ContentKindLabels maps kind identifiers to human-facing labels.
var ContentKindLabels = map[string]string{
	KindNotes:              "Notes",
	KindImportantQuestions: "Important Questions",
	KindMCQs:               "MCQs",
	KindSummary:            "Summary",
	KindMindMap:            "Mind Map",
	KindSamplePaper:        "Sample Paper",
	KindPYQ:                "Previous Year Questions",
}

// KindOption is one entry of a kind select menu.
type KindOption struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	ChapterScoped bool   `json:"chapterScoped"`
}

// KindOptions returns the kinds in canonical order for select menus.
func KindOptions() []KindOption {
	out := make([]KindOption, 0, len(ContentKinds))
	for _, k := range ContentKinds {
		out = append(out, KindOption{
			Key:           k,
			Label:         KindLabel(k),
			ChapterScoped: ChapterRequired(k),
		})
	}
	return out
}

// chapterlessKinds are the kinds organized by exam year rather than by
// chapter: full-paper content that spans the whole syllabus.
var chapterlessKinds = map[string]bool{
	KindSamplePaper: true,
	KindPYQ:         true,
}

// ChapterRequired reports whether materials of the given kind must reference
// a chapter. Kinds not present in the registry require a chapter: the
// fail-safe direction is to demand more specificity, not less.
func ChapterRequired(kind string) bool {
	return !chapterlessKinds[kind]
}

// IsValidContentKind reports whether kind is one of the canonical identifiers.
func IsValidContentKind(kind string) bool {
	for _, k := range ContentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// KindLabel returns the human-facing label for a kind, falling back to the
// raw identifier for unknown values.
func KindLabel(kind string) string {
	if label, ok := ContentKindLabels[kind]; ok {
		return label
	}
	return kind
}
