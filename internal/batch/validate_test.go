package batch_test

import (
	"strings"
	"testing"

	"github.com/studypointin/studypoint/internal/batch"
	"github.com/studypointin/studypoint/internal/domain/models"
)

// linkItem returns a fully valid link item for a chapterless kind.
func linkItem(t *testing.T) batch.Item {
	t.Helper()
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{
		Kind:      models.KindSamplePaper,
		SubjectID: "subj-science",
		Year:      "2024",
	})
	it := s.AddLink("https://files.example.com/paper.pdf", "paper.pdf")
	title := "Science Sample Paper 2024"
	it, err := s.UpdateItem(it.ID, batch.ItemUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	return it
}

func TestValidate_Valid(t *testing.T) {
	it := linkItem(t)
	if err := batch.Validate(&it); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}
}

func TestValidate_TitleFirst(t *testing.T) {
	it := linkItem(t)
	// Break several rules at once; the title rule must win.
	it.Title = "   "
	it.SubjectID = ""
	err := batch.Validate(&it)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "title") {
		t.Errorf("expected title error first, got %q", err)
	}
}

func TestValidate_LinkFileNameMissing(t *testing.T) {
	// A populated link with an empty file name must be rejected citing the
	// missing file name.
	s := batch.NewSession()
	s.SetDefaults(batch.Defaults{Kind: models.KindSamplePaper, SubjectID: "s1", Year: "2024"})
	slot := s.AddLink("https://files.example.com/paper.pdf", "")
	title := "Paper"
	slot, _ = s.UpdateItem(slot.ID, batch.ItemUpdate{Title: &title})

	err := batch.Validate(&slot)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "file name") {
		t.Errorf("expected file name error, got %q", err)
	}
}

func TestValidate_SubjectRequired(t *testing.T) {
	it := linkItem(t)
	it.SubjectID = " "
	err := batch.Validate(&it)
	if err == nil || !strings.Contains(err.Error(), "subject") {
		t.Errorf("expected subject error, got %v", err)
	}
}

func TestValidate_ChapterSkippedForYearKinds(t *testing.T) {
	// Sample papers carry a year instead of a chapter; an empty chapter must
	// pass. Switching the kind to notes with the chapter still empty must
	// then fail.
	it := linkItem(t)
	it.ChapterID = ""
	if err := batch.Validate(&it); err != nil {
		t.Fatalf("chapterless kind should skip chapter rule, got %v", err)
	}

	it.Kind = models.KindNotes
	err := batch.Validate(&it)
	if err == nil || !strings.Contains(err.Error(), "chapter") {
		t.Errorf("expected chapter error after kind switch, got %v", err)
	}
}

func TestValidate_UnknownKindRequiresChapter(t *testing.T) {
	it := linkItem(t)
	it.Kind = "mystery_kind"
	it.ChapterID = ""
	if err := batch.Validate(&it); err == nil {
		t.Error("unknown kinds must fail safe toward requiring a chapter")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	it := linkItem(t)
	it.Title = ""
	first := batch.Validate(&it)
	for i := 0; i < 5; i++ {
		again := batch.Validate(&it)
		if (first == nil) != (again == nil) {
			t.Fatalf("validation not idempotent: first=%v again=%v", first, again)
		}
		if first != nil && first.Error() != again.Error() {
			t.Fatalf("validation message changed: %q vs %q", first, again)
		}
	}
}

func TestValidateAll_ReportsPosition(t *testing.T) {
	good := linkItem(t)
	bad := linkItem(t)
	bad.SubjectID = ""

	err := batch.ValidateAll([]batch.Item{good, bad})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "item 2") {
		t.Errorf("expected position in message, got %q", err)
	}
}
