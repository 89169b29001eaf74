// internal/app/features/content/handler.go
package content

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/studypointin/studypoint/internal/app/features/errors"
	chapterstore "github.com/studypointin/studypoint/internal/app/store/chapters"
	materialstore "github.com/studypointin/studypoint/internal/app/store/materials"
	subjectstore "github.com/studypointin/studypoint/internal/app/store/subjects"
	"github.com/studypointin/studypoint/internal/app/system/htmlsanitize"
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"github.com/studypointin/studypoint/internal/app/system/viewdata"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public study-material pages: the subject page, the
// per-kind listings, and file delivery.
type Handler struct {
	Subjects  *subjectstore.Store
	Chapters  *chapterstore.Store
	Materials *materialstore.Store
	Files     storage.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(
	subjects *subjectstore.Store,
	chapters *chapterstore.Store,
	materials *materialstore.Store,
	files storage.Store,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Subjects:  subjects,
		Chapters:  chapters,
		Materials: materials,
		Files:     files,
		ErrLog:    errLog,
		Log:       logger,
	}
}

type subjectPageData struct {
	viewdata.BaseVM
	Subject  models.Subject
	Chapters []models.Chapter
	Kinds    []models.KindOption
}

// ServeSubject handles GET /subjects/{slug}: the chapter list plus the
// content-kind navigation for one subject.
func (h *Handler) ServeSubject(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content: subject page")
	defer cancel()

	subj, err := h.Subjects.GetBySlug(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "subject not found", err, "That subject does not exist.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load subject failed", err, "A database error occurred.", "/")
		return
	}

	chapters, err := h.Chapters.ListBySubject(ctx, subj.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list chapters failed", err, "A database error occurred.", "/")
		return
	}

	templates.Render(w, r, "content_subject", subjectPageData{
		BaseVM:   viewdata.NewBaseVM(r, subj.Name, "/"),
		Subject:  subj,
		Chapters: chapters,
		Kinds:    models.KindOptions(),
	})
}

// materialItem pairs a material with its description sanitized for direct
// HTML rendering.
type materialItem struct {
	models.Material
	DescriptionHTML template.HTML
}

func materialItems(mats []models.Material) []materialItem {
	out := make([]materialItem, 0, len(mats))
	for _, m := range mats {
		out = append(out, materialItem{
			Material:        m,
			DescriptionHTML: htmlsanitize.SanitizeToHTML(m.Description),
		})
	}
	return out
}

type chapterListData struct {
	viewdata.BaseVM
	Subject   models.Subject
	Chapter   models.Chapter
	KindLabel string
	Materials []materialItem
}

// ServeChapterContent handles GET /subjects/{slug}/chapters/{chapterID}/{kind}:
// the materials of one chapter-scoped kind, newest first.
func (h *Handler) ServeChapterContent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	kind := chi.URLParam(r, "kind")

	if !models.IsValidContentKind(kind) || !models.ChapterRequired(kind) {
		h.ErrLog.LogNotFound(w, r, "unknown chapter content kind", nil, "That page does not exist.", "/")
		return
	}
	chapterID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "chapterID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "bad chapter id", err, "That page does not exist.", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content: chapter listing")
	defer cancel()

	subj, err := h.Subjects.GetBySlug(ctx, slug)
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "subject not found", err, "That subject does not exist.", "/")
		return
	}
	ch, err := h.Chapters.GetByID(ctx, chapterID)
	if err != nil || ch.SubjectID != subj.ID {
		h.ErrLog.LogNotFound(w, r, "chapter not found", err, "That chapter does not exist.", "/subjects/"+slug)
		return
	}

	mats, err := h.Materials.ListChapterContent(ctx, kind, subj.ID, ch.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list chapter content failed", err, "A database error occurred.", "/subjects/"+slug)
		return
	}

	templates.Render(w, r, "content_chapter", chapterListData{
		BaseVM:    viewdata.NewBaseVM(r, ch.Title+" · "+models.KindLabel(kind), "/subjects/"+slug),
		Subject:   subj,
		Chapter:   ch,
		KindLabel: models.KindLabel(kind),
		Materials: materialItems(mats),
	})
}

type yearListData struct {
	viewdata.BaseVM
	Subject   models.Subject
	KindLabel string
	Materials []materialItem
}

// ServeYearContent handles GET /subjects/{slug}/{kind} for the year-scoped
// kinds (sample papers and previous year questions), most recent year first.
func (h *Handler) ServeYearContent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	kind := chi.URLParam(r, "kind")

	if !models.IsValidContentKind(kind) || models.ChapterRequired(kind) {
		h.ErrLog.LogNotFound(w, r, "unknown year content kind", nil, "That page does not exist.", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content: year listing")
	defer cancel()

	subj, err := h.Subjects.GetBySlug(ctx, slug)
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "subject not found", err, "That subject does not exist.", "/")
		return
	}

	mats, err := h.Materials.ListYearContent(ctx, kind, subj.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list year content failed", err, "A database error occurred.", "/subjects/"+slug)
		return
	}

	templates.Render(w, r, "content_year", yearListData{
		BaseVM:    viewdata.NewBaseVM(r, subj.Name+" · "+models.KindLabel(kind), "/subjects/"+slug),
		Subject:   subj,
		KindLabel: models.KindLabel(kind),
		Materials: materialItems(mats),
	})
}

// ServeDownload handles GET /materials/{id}/download. Link-backed materials
// redirect to their remote URL; file-backed ones stream from storage as an
// attachment. Either way the download counter is bumped.
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	h.deliver(w, r, true)
}

// ServeView handles GET /materials/{id}/view: inline delivery for the
// in-browser preview, counted as a view.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	h.deliver(w, r, false)
}

func (h *Handler) deliver(w http.ResponseWriter, r *http.Request, download bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "content: deliver material")
	defer cancel()

	m, err := h.Materials.GetByID(ctx, id)
	if err != nil || m.Status != "active" {
		http.NotFound(w, r)
		return
	}

	// Count first; a counter bump on a failed stream is acceptable, the
	// reverse ordering would hold the response open on a slow write.
	if download {
		if err := h.Materials.IncrementDownloads(ctx, id); err != nil {
			h.Log.Warn("increment downloads failed", zap.Error(err))
		}
	} else {
		if err := h.Materials.IncrementViews(ctx, id); err != nil {
			h.Log.Warn("increment views failed", zap.Error(err))
		}
	}

	if m.HasLink() {
		http.Redirect(w, r, m.RemoteLink, http.StatusFound)
		return
	}

	rc, err := h.Files.Open(ctx, m.FilePath)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.Log.Error("open stored file failed", zap.String("key", m.FilePath), zap.Error(err))
		http.Error(w, "file unavailable", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition+`; filename="`+m.FileName+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	if m.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(m.FileSize, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("stream material failed", zap.String("key", m.FilePath), zap.Error(err))
	}
}
