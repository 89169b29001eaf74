package content_test

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studypointin/studypoint/internal/app/features/content"
	uierrors "github.com/studypointin/studypoint/internal/app/features/errors"
	chapterstore "github.com/studypointin/studypoint/internal/app/store/chapters"
	materialstore "github.com/studypointin/studypoint/internal/app/store/materials"
	subjectstore "github.com/studypointin/studypoint/internal/app/store/subjects"
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"github.com/studypointin/studypoint/internal/domain/models"
	"github.com/studypointin/studypoint/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	handler   *content.Handler
	materials *materialstore.Store
	files     *storage.Local
	fx        *testutil.Fixtures
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	files, err := storage.NewLocal(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	materials := materialstore.New(db)
	h := content.NewHandler(
		subjectstore.New(db),
		chapterstore.New(db),
		materials,
		files,
		uierrors.NewErrorLogger(logger),
		logger,
	)
	return testEnv{handler: h, materials: materials, files: files, fx: testutil.NewFixtures(t, db)}
}

func TestServeDownload_FileMaterial(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subj := env.fx.CreateSubject(ctx, "Science", "science")
	ch := env.fx.CreateChapter(ctx, subj.ID, "Chemical Reactions", 1)
	m := env.fx.CreateMaterial(ctx, "Chapter 1 Notes", models.KindNotes, subj.ID, &ch.ID)

	payload := []byte("%PDF-1.4 stored payload")
	if err := env.files.Save(ctx, m.FilePath, bytes.NewReader(payload), int64(len(payload)), "application/pdf"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest("GET", "/materials/"+m.ID.Hex()+"/download", nil)
	req = testutil.WithChiURLParam(req, "id", m.ID.Hex())
	rec := testutil.NewRecorder()
	env.handler.ServeDownload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, 200)
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Error("streamed body does not match the stored payload")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}

	got, err := env.materials.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DownloadCount != 1 {
		t.Errorf("expected the download to be counted, got %d", got.DownloadCount)
	}
}

func TestServeView_LinkMaterialRedirects(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subj := env.fx.CreateSubject(ctx, "Science", "science")
	created, err := env.materials.Create(ctx, models.Material{
		Title:          "Sample Paper 2024",
		Kind:           models.KindSamplePaper,
		SubjectID:      subj.ID,
		Year:           "2024",
		RemoteLink:     "https://files.example.com/sp2024.pdf",
		RemoteFileName: "sp2024.pdf",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest("GET", "/materials/"+created.ID.Hex()+"/view", nil)
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()
	env.handler.ServeView(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "https://files.example.com/sp2024.pdf")

	got, err := env.materials.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ViewCount != 1 {
		t.Errorf("expected the view to be counted, got %d", got.ViewCount)
	}
}

func TestServeDownload_DisabledMaterialHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subj := env.fx.CreateSubject(ctx, "Science", "science")
	ch := env.fx.CreateChapter(ctx, subj.ID, "Chemical Reactions", 1)
	m := env.fx.CreateMaterial(ctx, "Old Notes", models.KindNotes, subj.ID, &ch.ID)
	if err := env.materials.Update(ctx, m.ID, models.Material{Status: "disabled"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	req := httptest.NewRequest("GET", "/materials/"+m.ID.Hex()+"/download", nil)
	req = testutil.WithChiURLParam(req, "id", m.ID.Hex())
	rec := testutil.NewRecorder()
	env.handler.ServeDownload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, 404)
}

func TestServeDownload_BadID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/materials/not-an-id/download", nil)
	req = testutil.WithChiURLParam(req, "id", "not-an-id")
	rec := testutil.NewRecorder()
	env.handler.ServeDownload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, 404)
}
