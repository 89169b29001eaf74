// Package batch implements the admin bulk-upload pipeline: a session-scoped
// collection of pending content items that is validated as a whole, submitted
// sequentially to the upload endpoint, and reconciled into per-item outcomes.
//
// The pipeline is deliberately simple: one submission in flight at a time,
// results buffered and merged in a single transition, no cancellation beyond
// context propagation. Bulk upload is an infrequent administrative action, so
// predictability wins over throughput.
package batch

import (
	"github.com/google/uuid"
)

// Method identifies how an item's content reaches storage.
type Method string

const (
	// MethodFile uploads a locally selected file through the endpoint.
	MethodFile Method = "file"
	// MethodLink registers a file that already lives in external storage.
	MethodLink Method = "link"
)

// Status is the lifecycle state of one item within a batch run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Source is the tagged content source of an item. Exactly one concrete
// variant (FileSource or LinkSource) is held per item, which rules out the
// both-populated and neither-populated states by construction.
type Source interface {
	method() Method
}

// FileSource is a locally selected file, spooled to a temp file until the
// batch is submitted.
type FileSource struct {
	Name      string // declared file name
	Size      int64  // declared size in bytes
	SpoolPath string // temp file holding the payload
}

func (FileSource) method() Method { return MethodFile }

// LinkSource points at a file that already exists in external storage.
type LinkSource struct {
	URL      string
	FileName string // display name for the linked file
}

func (LinkSource) method() Method { return MethodLink }

// Item is one pending or processed unit of content in a batch.
//
// Items start Pending, move to Submitting when the run begins, and end in
// Succeeded or Failed. Terminal items no longer accept edits; the one
// exception is the deliberate bulk apply-defaults action, which overwrites
// the metadata fields of every item regardless of status.
type Item struct {
	ID     string
	Source Source

	Title     string
	Kind      string // content kind key, see models.ContentKinds
	SubjectID string
	ChapterID string // relevant only when the kind is chapter-scoped
	Year      string // relevant only when the kind is year-scoped

	// Counter seeds written into the created material row.
	SeedViews     int64
	SeedDownloads int64

	Status    Status
	LastError string // set only when Status is StatusFailed
}

// Method reports the item's upload method, derived from its source variant.
func (it *Item) Method() Method {
	if it.Source == nil {
		return MethodFile
	}
	return it.Source.method()
}

// Terminal reports whether the item has reached a final state.
func (it *Item) Terminal() bool {
	return it.Status == StatusSucceeded || it.Status == StatusFailed
}

// File returns the item's file source, or nil for link items.
func (it *Item) File() *FileSource {
	if f, ok := it.Source.(FileSource); ok {
		return &f
	}
	return nil
}

// Link returns the item's link source, or nil for file items.
func (it *Item) Link() *LinkSource {
	if l, ok := it.Source.(LinkSource); ok {
		return &l
	}
	return nil
}

// newItem builds a Pending item with a fresh ID and the given defaults
// applied to its metadata fields.
func newItem(src Source, d Defaults) *Item {
	it := &Item{
		ID:     uuid.NewString(),
		Source: src,
		Status: StatusPending,
	}
	d.applyTo(it)
	return it
}
