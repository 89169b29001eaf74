// internal/app/features/bulkupload/handler.go
package bulkupload

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/studypointin/studypoint/internal/app/features/errors"
	chapterstore "github.com/studypointin/studypoint/internal/app/store/chapters"
	subjectstore "github.com/studypointin/studypoint/internal/app/store/subjects"
	"github.com/studypointin/studypoint/internal/app/system/auth"
	"github.com/studypointin/studypoint/internal/app/system/limits"
	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"github.com/studypointin/studypoint/internal/app/system/viewdata"
	"github.com/studypointin/studypoint/internal/batch"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxFilesBody caps one add-files request: a handful of items at the per-file
// ceiling plus multipart framing.
const maxFilesBody = 64 << 20

// Handler serves the bulk-upload admin page and its batch API. All batch
// state lives in the Registry; the database is only touched indirectly,
// through the upload endpoint each item is submitted to.
type Handler struct {
	Registry *Registry
	Subjects *subjectstore.Store
	Chapters *chapterstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// UploadEndpoint is the absolute URL of the upload API this instance
	// submits batch items to (normally its own /api/upload).
	UploadEndpoint string

	// SpoolDir is where selected files wait between add and submit.
	SpoolDir string

	// Client overrides the submission HTTP client, for tests.
	Client *http.Client
}

func NewHandler(
	registry *Registry,
	subjects *subjectstore.Store,
	chapters *chapterstore.Store,
	errLog *uierrors.ErrorLogger,
	uploadEndpoint, spoolDir string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Registry:       registry,
		Subjects:       subjects,
		Chapters:       chapters,
		ErrLog:         errLog,
		UploadEndpoint: uploadEndpoint,
		SpoolDir:       spoolDir,
		Log:            logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Page                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type pageData struct {
	viewdata.BaseVM
	Subjects []models.Subject
	Kinds    []models.KindOption
}

// ServePage handles GET /admin/bulk-upload.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "bulkupload: page")
	defer cancel()

	subjects, err := h.Subjects.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list subjects failed", err, "Unable to load subjects.", "/")
		return
	}

	templates.Render(w, r, "bulk_upload", pageData{
		BaseVM:   viewdata.NewBaseVM(r, "Bulk Upload", "/"),
		Subjects: subjects,
		Kinds:    models.KindOptions(),
	})
}

// ServeChapters handles GET /admin/bulk-upload/api/chapters?subject={id}:
// the chapter options for the selected subject, for the defaults form.
func (h *Handler) ServeChapters(w http.ResponseWriter, r *http.Request) {
	subjectID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("subject"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "subject is not valid"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "bulkupload: chapters")
	defer cancel()

	chapters, err := h.Chapters.ListBySubject(ctx, subjectID)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, apiError{Error: "could not load chapters"})
		return
	}

	type chapterOption struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
	}
	out := make([]chapterOption, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, chapterOption{ID: ch.ID.Hex(), Number: ch.ChapterNumber, Title: ch.Title})
	}
	h.writeJSON(w, http.StatusOK, out)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Batch API                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type apiError struct {
	Error string `json:"error"`
}

// itemView is the JSON shape of one batch item.
type itemView struct {
	ID            string `json:"id"`
	Method        string `json:"method"`
	Title         string `json:"title"`
	Kind          string `json:"kind"`
	SubjectID     string `json:"subjectId"`
	ChapterID     string `json:"chapterId,omitempty"`
	Year          string `json:"year,omitempty"`
	SeedViews     int64  `json:"seedViews"`
	SeedDownloads int64  `json:"seedDownloads"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`

	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
	LinkURL  string `json:"linkUrl,omitempty"`
}

func viewOf(it batch.Item) itemView {
	v := itemView{
		ID:            it.ID,
		Method:        string(it.Method()),
		Title:         it.Title,
		Kind:          it.Kind,
		SubjectID:     it.SubjectID,
		ChapterID:     it.ChapterID,
		Year:          it.Year,
		SeedViews:     it.SeedViews,
		SeedDownloads: it.SeedDownloads,
		Status:        string(it.Status),
		Error:         it.LastError,
	}
	if f := it.File(); f != nil {
		v.FileName = f.Name
		v.FileSize = f.Size
	}
	if l := it.Link(); l != nil {
		v.LinkURL = l.URL
		v.FileName = l.FileName
	}
	return v
}

type defaultsView struct {
	Kind          string `json:"kind"`
	SubjectID     string `json:"subjectId"`
	ChapterID     string `json:"chapterId,omitempty"`
	Year          string `json:"year,omitempty"`
	SeedViews     int64  `json:"seedViews"`
	SeedDownloads int64  `json:"seedDownloads"`
}

type stateView struct {
	Items     []itemView     `json:"items"`
	Counters  batch.Counters `json:"counters"`
	Defaults  defaultsView   `json:"defaults"`
	Completed bool           `json:"completed"`
}

func (h *Handler) state(s *batch.Session) stateView {
	items := s.Items()
	views := make([]itemView, len(items))
	for i, it := range items {
		views[i] = viewOf(it)
	}
	d := s.Defaults()
	return stateView{
		Items:    views,
		Counters: s.Counters(),
		Defaults: defaultsView{
			Kind:          d.Kind,
			SubjectID:     d.SubjectID,
			ChapterID:     d.ChapterID,
			Year:          d.Year,
			SeedViews:     d.SeedViews,
			SeedDownloads: d.SeedDownloads,
		},
		Completed: s.Completed(),
	}
}

// ServeState handles GET .../api/state: the whole batch for rendering.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	h.writeJSON(w, http.StatusOK, h.state(s))
}

// addFilesResponse reports what happened to each selected file: accepted
// items plus non-fatal warnings for the ones that were excluded.
type addFilesResponse struct {
	Items    []itemView `json:"items"`
	Warnings []string   `json:"warnings,omitempty"`
}

// HandleAddFiles handles POST .../api/files. Each selected file is checked
// against the per-file ceiling and spooled; oversized files produce a warning
// and are skipped without affecting the rest.
func (h *Handler) HandleAddFiles(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxFilesBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	var resp addFilesResponse
	for _, header := range r.MultipartForm.File["files"] {
		if header.Size > batch.MaxFileBytes {
			resp.Warnings = append(resp.Warnings, header.Filename+": "+batch.ErrFileTooLarge.Error())
			continue
		}

		spoolPath, err := h.spool(header)
		if err != nil {
			h.Log.Error("spool file failed", zap.String("name", header.Filename), zap.Error(err))
			resp.Warnings = append(resp.Warnings, header.Filename+": could not read file")
			continue
		}

		it, err := s.AddFile(header.Filename, header.Size, spoolPath)
		if err != nil {
			_ = os.Remove(spoolPath)
			resp.Warnings = append(resp.Warnings, header.Filename+": "+err.Error())
			continue
		}
		resp.Items = append(resp.Items, viewOf(it))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type addLinkRequest struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// HandleAddLink handles POST .../api/links.
func (h *Handler) HandleAddLink(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	var req addLinkRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	it := s.AddLink(req.URL, req.FileName)
	h.writeJSON(w, http.StatusOK, viewOf(it))
}

type updateItemRequest struct {
	Title         *string `json:"title"`
	Kind          *string `json:"kind"`
	SubjectID     *string `json:"subjectId"`
	ChapterID     *string `json:"chapterId"`
	Year          *string `json:"year"`
	SeedViews     *int64  `json:"seedViews"`
	SeedDownloads *int64  `json:"seedDownloads"`
}

// HandleUpdateItem handles PATCH .../api/items/{id}: partial metadata edits.
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	var req updateItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	it, err := s.UpdateItem(chi.URLParam(r, "id"), batch.ItemUpdate{
		Title:         req.Title,
		Kind:          req.Kind,
		SubjectID:     req.SubjectID,
		ChapterID:     req.ChapterID,
		Year:          req.Year,
		SeedViews:     req.SeedViews,
		SeedDownloads: req.SeedDownloads,
	})
	if err != nil {
		h.writeBatchError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, viewOf(it))
}

type replaceLinkRequest struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// HandleReplaceLink handles POST .../api/items/{id}/link: switch the item's
// source to a remote link.
func (h *Handler) HandleReplaceLink(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	var req replaceLinkRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	old, _ := s.Get(chi.URLParam(r, "id"))
	it, err := s.ReplaceSource(chi.URLParam(r, "id"), batch.LinkSource{URL: req.URL, FileName: req.FileName})
	if err != nil {
		h.writeBatchError(w, err)
		return
	}
	if f := old.File(); f != nil && f.SpoolPath != "" {
		removeSpools([]string{f.SpoolPath}, h.Log)
	}
	h.writeJSON(w, http.StatusOK, viewOf(it))
}

// HandleReplaceFile handles POST .../api/items/{id}/file: switch the item's
// source to a freshly selected file.
func (h *Handler) HandleReplaceFile(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	r.Body = http.MaxBytesReader(w, r.Body, batch.MaxFileBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "a file is required"})
		return
	}
	file.Close()

	if header.Size > batch.MaxFileBytes {
		h.writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: batch.ErrFileTooLarge.Error()})
		return
	}
	spoolPath, err := h.spool(header)
	if err != nil {
		h.Log.Error("spool file failed", zap.String("name", header.Filename), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, apiError{Error: "could not read file"})
		return
	}

	old, _ := s.Get(chi.URLParam(r, "id"))
	it, err := s.ReplaceSource(chi.URLParam(r, "id"), batch.FileSource{
		Name:      header.Filename,
		Size:      header.Size,
		SpoolPath: spoolPath,
	})
	if err != nil {
		_ = os.Remove(spoolPath)
		h.writeBatchError(w, err)
		return
	}
	if f := old.File(); f != nil && f.SpoolPath != "" {
		removeSpools([]string{f.SpoolPath}, h.Log)
	}
	h.writeJSON(w, http.StatusOK, viewOf(it))
}

// HandleRemoveItem handles DELETE .../api/items/{id}.
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	removed, err := s.Remove(chi.URLParam(r, "id"))
	if err != nil {
		h.writeBatchError(w, err)
		return
	}
	if f := removed.File(); f != nil && f.SpoolPath != "" {
		removeSpools([]string{f.SpoolPath}, h.Log)
	}
	h.writeJSON(w, http.StatusOK, h.state(s))
}

type defaultsRequest struct {
	Kind          string `json:"kind"`
	SubjectID     string `json:"subjectId"`
	ChapterID     string `json:"chapterId"`
	Year          string `json:"year"`
	SeedViews     int64  `json:"seedViews"`
	SeedDownloads int64  `json:"seedDownloads"`
}

// HandleSetDefaults handles POST .../api/defaults.
func (h *Handler) HandleSetDefaults(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	var req defaultsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	s.SetDefaults(batch.Defaults{
		Kind:          req.Kind,
		SubjectID:     req.SubjectID,
		ChapterID:     req.ChapterID,
		Year:          req.Year,
		SeedViews:     req.SeedViews,
		SeedDownloads: req.SeedDownloads,
	})
	h.writeJSON(w, http.StatusOK, h.state(s))
}

// HandleApplyDefaults handles POST .../api/defaults/apply: overwrite every
// item's metadata with the defaults template.
func (h *Handler) HandleApplyDefaults(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	n := s.ApplyDefaults()
	h.Log.Info("bulk-upload defaults applied", zap.Int("items", n))
	h.writeJSON(w, http.StatusOK, h.state(s))
}

type submitResponse struct {
	Summary batch.Summary `json:"summary"`
	State   stateView     `json:"state"`
}

// HandleSubmit handles POST .../api/submit: run the batch against the upload
// endpoint, forwarding the admin's own session cookie so the endpoint sees
// the same signed-in user.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	header := http.Header{}
	if c := r.Header.Get("Cookie"); c != "" {
		header.Set("Cookie", c)
	}
	transport := &batch.HTTPTransport{
		Endpoint: h.UploadEndpoint,
		Client:   h.Client,
		Header:   header,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "bulkupload: submit")
	defer cancel()

	summary, err := batch.Run(ctx, s, transport)
	if err != nil {
		h.writeBatchError(w, err)
		return
	}

	h.Log.Info("bulk-upload batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	h.writeJSON(w, http.StatusOK, submitResponse{Summary: summary, State: h.state(s)})
}

// HandleReset handles POST .../api/reset: drop all items, keep the defaults.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	removeSpools(s.Reset(), h.Log)
	h.writeJSON(w, http.StatusOK, h.state(s))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// session returns the signed-in admin's batch session. The routes guarantee
// a signed-in user, so a missing one only happens in mis-wired tests.
func (h *Handler) session(r *http.Request) *batch.Session {
	u, _ := auth.CurrentUser(r)
	if u == nil {
		u = &auth.SessionUser{ID: "anonymous"}
	}
	return h.Registry.Get(u.ID)
}

// spool copies an uploaded part to a temp file for later submission.
func (h *Handler) spool(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.SpoolDir, "bulkupload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBulkFormSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeBatchError maps the batch package's sentinel errors onto statuses the
// page JS distinguishes; everything else is a 422 with the message verbatim.
func (h *Handler) writeBatchError(w http.ResponseWriter, err error) {
	code := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, batch.ErrItemNotFound):
		code = http.StatusNotFound
	case errors.Is(err, batch.ErrItemLocked), errors.Is(err, batch.ErrBatchSubmitted):
		code = http.StatusConflict
	}
	h.writeJSON(w, code, apiError{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("write bulk-upload response failed", zap.Error(err))
	}
}
