package batch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypointin/studypoint/internal/domain/models"
)

var (
	// ErrEmptyBatch is returned when a run is requested with no items.
	ErrEmptyBatch = errors.New("batch has no items")

	// ErrFileTooLarge marks a file rejected by the client-side size ceiling.
	// It is a non-fatal warning: the file is excluded, the batch continues.
	ErrFileTooLarge = errors.New("file exceeds the 10 MiB upload limit")

	// ErrItemNotFound is returned for operations on unknown item IDs.
	ErrItemNotFound = errors.New("item not found in this batch")

	// ErrItemLocked is returned when editing an item that is no longer Pending.
	ErrItemLocked = errors.New("item is no longer editable")

	// ErrBatchSubmitted is returned when a run is requested on a batch that
	// has already been submitted. There is no in-place retry; the user resets
	// and builds a new batch from the failed items.
	ErrBatchSubmitted = errors.New("batch already submitted; reset to start over")
)

// Counters summarizes per-status item counts for display.
type Counters struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Submitting int `json:"submitting"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// Summary is the outcome of one batch run.
type Summary struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Completed bool `json:"completed"` // true only when every item succeeded
}

// Session owns one admin's in-progress batch: the ordered item list and the
// defaults template. All state is in memory and discarded on reset; nothing
// here survives a restart, which is fine for an interactive admin form.
//
// The session is the only holder of mutable batch state. During a run the
// orchestrator touches it at exactly two points: the batch-wide transition to
// Submitting and the final merge of buffered results. Everything in between
// operates on a snapshot, so a renderer can never observe a half-updated list.
type Session struct {
	mu       sync.Mutex
	id       string
	items    []*Item
	defaults Defaults

	completed  bool
	lastActive time.Time
}

// NewSession creates an empty batch session with fresh defaults.
func NewSession() *Session {
	return &Session{
		id:         uuid.NewString(),
		defaults:   NewDefaults(),
		lastActive: time.Now(),
	}
}

// ID returns the session's opaque token.
func (s *Session) ID() string { return s.id }

// LastActive returns the time of the most recent mutating call, for idle
// expiry by the session registry.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() { s.lastActive = time.Now() }

// AddFile appends a new Pending file item pre-filled from the defaults
// template. Files over MaxFileBytes are rejected with ErrFileTooLarge and
// never enter the batch; a file of exactly the ceiling is accepted.
func (s *Session) AddFile(name string, size int64, spoolPath string) (Item, error) {
	if size > MaxFileBytes {
		return Item{}, ErrFileTooLarge
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	it := newItem(FileSource{Name: name, Size: size, SpoolPath: spoolPath}, s.defaults)
	s.items = append(s.items, it)
	return *it, nil
}

// AddLink appends a new Pending link item pre-filled from the defaults
// template. The link fields are validated at submission time, not here, so
// the admin can add slots first and fill them in afterwards.
func (s *Session) AddLink(url, fileName string) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	it := newItem(LinkSource{URL: url, FileName: fileName}, s.defaults)
	s.items = append(s.items, it)
	return *it
}

// ItemUpdate carries the optional field edits for UpdateItem. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Title         *string
	Kind          *string
	SubjectID     *string
	ChapterID     *string
	Year          *string
	SeedViews     *int64
	SeedDownloads *int64
}

// UpdateItem edits a Pending item's metadata. Items in Submitting or a
// terminal state reject edits with ErrItemLocked. A kind change cascades
// before any explicit chapter/year edit in the same update is applied.
func (s *Session) UpdateItem(id string, upd ItemUpdate) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	it := s.find(id)
	if it == nil {
		return Item{}, ErrItemNotFound
	}
	if it.Status != StatusPending {
		return Item{}, ErrItemLocked
	}

	if upd.Title != nil {
		it.Title = *upd.Title
	}
	if upd.Kind != nil {
		cascadeKind(it, *upd.Kind)
	}
	if upd.SubjectID != nil {
		it.SubjectID = *upd.SubjectID
	}
	if upd.ChapterID != nil {
		it.ChapterID = *upd.ChapterID
	}
	if upd.Year != nil {
		it.Year = *upd.Year
	}
	if upd.SeedViews != nil {
		it.SeedViews = *upd.SeedViews
	}
	if upd.SeedDownloads != nil {
		it.SeedDownloads = *upd.SeedDownloads
	}
	return *it, nil
}

// ReplaceSource swaps a Pending item's content source, the one sanctioned way
// to change an item's upload method after creation. File sources are checked
// against the size ceiling like AddFile.
func (s *Session) ReplaceSource(id string, src Source) (Item, error) {
	if f, ok := src.(FileSource); ok && f.Size > MaxFileBytes {
		return Item{}, ErrFileTooLarge
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	it := s.find(id)
	if it == nil {
		return Item{}, ErrItemNotFound
	}
	if it.Status != StatusPending {
		return Item{}, ErrItemLocked
	}
	it.Source = src
	return *it, nil
}

// Get returns a copy of the item with the given ID.
func (s *Session) Get(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.find(id); it != nil {
		return *it, true
	}
	return Item{}, false
}

// Remove deletes an item from the batch. Items mid-submission cannot be
// removed. The removed copy is returned so the caller can clean up any
// spooled file.
func (s *Session) Remove(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for i, it := range s.items {
		if it.ID == id {
			if it.Status == StatusSubmitting {
				return Item{}, ErrItemLocked
			}
			removed := *it
			s.items = append(s.items[:i], s.items[i+1:]...)
			return removed, nil
		}
	}
	return Item{}, ErrItemNotFound
}

// Defaults returns the current defaults template.
func (s *Session) Defaults() Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults
}

// SetDefaults replaces the defaults template. A kind change cascades: a
// chapter merely echoed back from the old kind is discarded, while a chapter
// picked together with the new kind is kept. For chapter-scoped kinds the
// year is discarded too.
func (s *Session) SetDefaults(d Defaults) Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if d.Kind != s.defaults.Kind {
		if d.ChapterID == s.defaults.ChapterID {
			d.ChapterID = ""
		}
		if models.ChapterRequired(d.Kind) {
			d.Year = ""
		}
	}
	s.defaults = d
	return d
}

// ApplyDefaults overwrites the metadata fields of every item in the batch
// with the defaults template, regardless of item status. This is the one
// operation allowed to touch non-Pending items, because it is a deliberate
// bulk user action. Titles and content sources are never touched. Returns
// the number of items updated.
func (s *Session) ApplyDefaults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for _, it := range s.items {
		s.defaults.applyTo(it)
	}
	return len(s.items)
}

// Items returns a snapshot of the batch in insertion order.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = *it
	}
	return out
}

// Counters returns the per-status item counts.
func (s *Session) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Counters{Total: len(s.items)}
	for _, it := range s.items {
		switch it.Status {
		case StatusPending:
			c.Pending++
		case StatusSubmitting:
			c.Submitting++
		case StatusSucceeded:
			c.Succeeded++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

// Completed reports whether the most recent run succeeded for every item.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Reset discards all items and the completed flag, returning the form to its
// initial empty state. The defaults template is preserved: an admin bulk-
// loading several batches for the same subject keeps their settings. The
// spool paths of removed file items are returned for cleanup.
func (s *Session) Reset() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	var spools []string
	for _, it := range s.items {
		if f, ok := it.Source.(FileSource); ok && f.SpoolPath != "" {
			spools = append(spools, f.SpoolPath)
		}
	}
	s.items = nil
	s.completed = false
	return spools
}

// beginRun is the first of the orchestrator's two write points: it validates
// the whole batch and, only if every item passes, transitions every item to
// Submitting and returns the snapshot to submit. On any validation failure
// no state changes.
func (s *Session) beginRun() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if len(s.items) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, it := range s.items {
		if it.Status != StatusPending {
			return nil, ErrBatchSubmitted
		}
	}

	snapshot := make([]Item, len(s.items))
	for i, it := range s.items {
		snapshot[i] = *it
	}
	if err := ValidateAll(snapshot); err != nil {
		return nil, err
	}

	for _, it := range s.items {
		it.Status = StatusSubmitting
	}
	for i := range snapshot {
		snapshot[i].Status = StatusSubmitting
	}
	return snapshot, nil
}

// mergeResults is the orchestrator's second write point: it folds the
// buffered per-item outcomes back into the item list in one transition and
// computes the run summary. Items are matched by ID; order is preserved
// because the item list is never reordered during a run.
func (s *Session) mergeResults(results []Result) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	byID := make(map[string]Result, len(results))
	for _, res := range results {
		byID[res.ItemID] = res
	}

	sum := Summary{Total: len(s.items)}
	for _, it := range s.items {
		res, ok := byID[it.ID]
		if !ok {
			continue
		}
		if res.Err != nil {
			it.Status = StatusFailed
			it.LastError = res.Err.Error()
			sum.Failed++
		} else {
			it.Status = StatusSucceeded
			it.LastError = ""
			sum.Succeeded++
		}
	}

	sum.Completed = sum.Total > 0 && sum.Succeeded == sum.Total
	s.completed = sum.Completed
	return sum
}

// find returns the live item with the given ID, or nil. Callers hold s.mu.
func (s *Session) find(id string) *Item {
	for _, it := range s.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
