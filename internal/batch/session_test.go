package batch_test

import (
	"errors"
	"testing"

	"github.com/studypointin/studypoint/internal/batch"
	"github.com/studypointin/studypoint/internal/domain/models"
)

func TestAddFile_SizeCeiling(t *testing.T) {
	s := batch.NewSession()

	// Exactly the ceiling is accepted.
	if _, err := s.AddFile("notes.pdf", batch.MaxFileBytes, "/tmp/spool-a"); err != nil {
		t.Errorf("file of exactly the ceiling should be accepted, got %v", err)
	}

	// One byte over is rejected and excluded; the rest of the batch stays.
	if _, err := s.AddFile("big.pdf", batch.MaxFileBytes+1, "/tmp/spool-b"); !errors.Is(err, batch.ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if got := len(s.Items()); got != 1 {
		t.Errorf("oversize file must not enter the batch: have %d items", got)
	}
}

func TestAddFile_PrefilledFromDefaults(t *testing.T) {
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{
		Kind:          models.KindNotes,
		SubjectID:     "subj-math",
		ChapterID:     "ch-03",
		SeedViews:     120,
		SeedDownloads: 40,
	})

	it, err := s.AddFile("ch3.pdf", 2048, "/tmp/spool")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if it.Kind != models.KindNotes || it.SubjectID != "subj-math" || it.ChapterID != "ch-03" {
		t.Errorf("metadata not pre-filled from defaults: %+v", it)
	}
	if it.SeedViews != 120 || it.SeedDownloads != 40 {
		t.Errorf("counter seeds not pre-filled: %+v", it)
	}
	if it.Status != batch.StatusPending {
		t.Errorf("new items must start Pending, got %s", it.Status)
	}
	if it.Method() != batch.MethodFile {
		t.Errorf("expected file method, got %s", it.Method())
	}
}

func TestSetDefaults_KindChangeCascades(t *testing.T) {
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{
		Kind:      models.KindNotes,
		SubjectID: "subj-sci",
		ChapterID: "ch-07",
	})

	// Switching to a year-scoped kind discards the echoed-back chapter.
	d := s.SetDefaults(batch.Defaults{
		Kind:      models.KindSamplePaper,
		SubjectID: "subj-sci",
		ChapterID: "ch-07",
		Year:      "2023",
	})
	if d.ChapterID != "" {
		t.Errorf("chapter should be cleared on kind change, got %q", d.ChapterID)
	}
	if d.Year != "2023" {
		t.Errorf("year should survive for year-scoped kinds, got %q", d.Year)
	}

	// Switching back to a chapter-scoped kind discards the year.
	d = s.SetDefaults(batch.Defaults{
		Kind:      models.KindMCQs,
		SubjectID: "subj-sci",
		Year:      "2023",
	})
	if d.Year != "" {
		t.Errorf("year should be cleared for chapter-scoped kinds, got %q", d.Year)
	}
}

func TestSetDefaults_KindChangeKeepsNewChapter(t *testing.T) {
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{
		Kind:      models.KindNotes,
		SubjectID: "subj-sci",
		ChapterID: "ch-07",
	})

	// A chapter picked in the same submission as the kind change belongs
	// to the new kind and survives the cascade.
	d := s.SetDefaults(batch.Defaults{
		Kind:      models.KindMCQs,
		SubjectID: "subj-sci",
		ChapterID: "ch-12",
	})
	if d.ChapterID != "ch-12" {
		t.Errorf("newly picked chapter should be kept, got %q", d.ChapterID)
	}
}

func TestUpdateItem_KindCascade(t *testing.T) {
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{
		Kind:      models.KindNotes,
		SubjectID: "subj-sst",
		ChapterID: "ch-01",
	})
	it := s.AddLink("https://files.example.com/x.pdf", "x.pdf")

	kind := models.KindPYQ
	it, err := s.UpdateItem(it.ID, batch.ItemUpdate{Kind: &kind})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if it.ChapterID != "" {
		t.Errorf("item chapter should be cleared on kind change, got %q", it.ChapterID)
	}
}

func TestApplyDefaults_RoundTrip(t *testing.T) {
	s := batch.NewSession()
	it1 := s.AddLink("https://files.example.com/a.pdf", "a.pdf")
	it2, err := s.AddFile("b.pdf", 100, "/tmp/spool-b")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	titleA := "Item A"
	if _, err := s.UpdateItem(it1.ID, batch.ItemUpdate{Title: &titleA}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	want := batch.Defaults{
		Kind:          models.KindSamplePaper,
		SubjectID:     "subj-eng",
		Year:          "2022",
		SeedViews:     500,
		SeedDownloads: 90,
	}
	s.SetDefaults(want)
	if n := s.ApplyDefaults(); n != 2 {
		t.Fatalf("ApplyDefaults touched %d items, want 2", n)
	}

	for _, it := range s.Items() {
		if it.Kind != want.Kind || it.SubjectID != want.SubjectID ||
			it.ChapterID != want.ChapterID || it.Year != want.Year ||
			it.SeedViews != want.SeedViews || it.SeedDownloads != want.SeedDownloads {
			t.Errorf("item %s metadata does not match template: %+v", it.ID, it)
		}
	}

	// Titles and sources must be untouched.
	got1, _ := s.Get(it1.ID)
	if got1.Title != "Item A" {
		t.Errorf("apply-defaults must not touch titles, got %q", got1.Title)
	}
	got2, _ := s.Get(it2.ID)
	if got2.File() == nil || got2.File().Name != "b.pdf" {
		t.Errorf("apply-defaults must not touch sources: %+v", got2.Source)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	s := batch.NewSession()
	title := "x"
	if _, err := s.UpdateItem("nope", batch.ItemUpdate{Title: &title}); !errors.Is(err, batch.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestReplaceSource_SwitchesMethod(t *testing.T) {
	s := batch.NewSession()
	it, err := s.AddFile("a.pdf", 10, "/tmp/spool-a")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	it, err = s.ReplaceSource(it.ID, batch.LinkSource{URL: "https://files.example.com/a.pdf", FileName: "a.pdf"})
	if err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}
	if it.Method() != batch.MethodLink {
		t.Errorf("expected link method after replace, got %s", it.Method())
	}
	if it.File() != nil {
		t.Error("file source should be gone after replace")
	}
}

func TestReset_PreservesDefaults(t *testing.T) {
	s := batch.NewSession()
	d := batch.Defaults{Kind: models.KindPYQ, SubjectID: "subj-hin", Year: "2021"}
	s.SetDefaults(d)
	if _, err := s.AddFile("a.pdf", 10, "/tmp/spool-a"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	s.AddLink("https://files.example.com/b.pdf", "b.pdf")

	spools := s.Reset()
	if len(s.Items()) != 0 {
		t.Error("reset must discard all items")
	}
	if got := s.Defaults(); got != d {
		t.Errorf("reset must preserve defaults: got %+v", got)
	}
	if len(spools) != 1 || spools[0] != "/tmp/spool-a" {
		t.Errorf("reset should hand back spool paths for cleanup, got %v", spools)
	}
}

func TestCounters(t *testing.T) {
	s := batch.NewSession()
	s.AddLink("https://files.example.com/a.pdf", "a.pdf")
	s.AddLink("https://files.example.com/b.pdf", "b.pdf")

	c := s.Counters()
	if c.Total != 2 || c.Pending != 2 || c.Succeeded != 0 || c.Failed != 0 {
		t.Errorf("unexpected counters: %+v", c)
	}
}
