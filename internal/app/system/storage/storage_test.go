package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/studypointin/studypoint/internal/app/system/storage"
)

func TestLocal_RoundTrip(t *testing.T) {
	st, err := storage.NewLocal(t.TempDir(), "/files/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	key := "materials/2026/09/abc123-notes.pdf"
	if err := st.Save(ctx, key, strings.NewReader("pdf-bytes"), 9, "application/pdf"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc, err := st.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "pdf-bytes" {
		t.Errorf("unexpected body %q", body)
	}

	if got := st.URL(key); got != "/files/"+key {
		t.Errorf("unexpected URL %q", got)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Open(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is not an error.
	if err := st.Delete(ctx, key); err != nil {
		t.Errorf("repeat delete should be a no-op, got %v", err)
	}
}

func TestLocal_RefusesTraversal(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewLocal(dir, "/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	if err := st.Save(ctx, "../escape.txt", strings.NewReader("x"), 1, "text/plain"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// The object must land inside the base directory despite the dot-dots.
	if _, err := st.Open(ctx, "escape.txt"); err != nil {
		t.Errorf("expected traversal collapsed into base dir, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	key := storage.ObjectKey("Ch 1 - Notes (final).pdf")
	if !strings.HasPrefix(key, "materials/") {
		t.Errorf("expected materials/ prefix, got %q", key)
	}
	if strings.Contains(key, " ") || strings.Contains(key, "(") {
		t.Errorf("expected awkward characters replaced, got %q", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("extension should survive, got %q", key)
	}

	// Two keys for the same name never collide.
	if storage.ObjectKey("a.pdf") == storage.ObjectKey("a.pdf") {
		t.Error("expected unique keys per call")
	}
}

func TestObjectKey_StripsDirectories(t *testing.T) {
	key := storage.ObjectKey("../../etc/passwd")
	if strings.Contains(key, "..") {
		t.Errorf("expected path components stripped, got %q", key)
	}
	if !strings.HasSuffix(key, "-passwd") {
		t.Errorf("expected bare file name, got %q", key)
	}
}
