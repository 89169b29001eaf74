// internal/app/features/uploadapi/handler.go
package uploadapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	materialstore "github.com/studypointin/studypoint/internal/app/store/materials"
	"github.com/studypointin/studypoint/internal/app/system/auth"
	"github.com/studypointin/studypoint/internal/app/system/htmlsanitize"
	"github.com/studypointin/studypoint/internal/app/system/limits"
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler implements the upload endpoint every material passes through,
// whether from the single-upload form or the bulk-upload pipeline.
type Handler struct {
	Materials *materialstore.Store
	Files     storage.Store
	Log       *zap.Logger

	// MaxBodyBytes overrides the default body ceiling when positive.
	MaxBodyBytes int64
}

func NewHandler(materials *materialstore.Store, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Materials: materials,
		Files:     files,
		Log:       logger,
	}
}

// uploadResponse is the endpoint's JSON body for both outcomes. Callers key
// off Success, not the HTTP status: validation failures are 200s with
// Success false, so the message survives intermediaries that rewrite error
// pages.
type uploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleUpload handles POST /api/upload.
//
// The multipart body is capped at limits.MaxUploadBodyBytes; oversized
// requests get a plain 413 whose body names the limit, which the bulk
// pipeline recognizes and turns into a remote-link suggestion.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = limits.MaxUploadBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Log.Warn("upload rejected: body over limit",
				zap.Int64("limit", maxErr.Limit))
			http.Error(w, "413 Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "invalid multipart form")
		return
	}

	m := models.Material{
		Title: strings.TrimSpace(r.FormValue("title")),
		Kind:  strings.TrimSpace(r.FormValue("contentType")),
		Year:  strings.TrimSpace(r.FormValue("year")),

		// The description comes from a rich-text widget, so it is HTML.
		Description: htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description"))),
	}

	subjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.FormValue("subjectId")))
	if err != nil {
		h.writeError(w, "subject_id is required")
		return
	}
	m.SubjectID = subjectID

	if raw := strings.TrimSpace(r.FormValue("chapterId")); raw != "" {
		chapterID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.writeError(w, "chapter_id is not valid")
			return
		}
		m.ChapterID = &chapterID
	}

	// Counter seeds let a migration carry over the numbers from the old site.
	m.ViewCount = parseSeed(r.FormValue("fakeViews"))
	m.DownloadCount = parseSeed(r.FormValue("fakeDownloads"))

	if u, ok := auth.CurrentUser(r); ok {
		if uid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			m.CreatedByID = &uid
			m.CreatedByName = u.Name
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "uploadapi: create material")
	defer cancel()

	var storedKey string
	switch method := strings.TrimSpace(r.FormValue("uploadMethod")); method {
	case "link":
		m.RemoteLink = strings.TrimSpace(r.FormValue("remoteLink"))
		m.RemoteFileName = strings.TrimSpace(r.FormValue("fileName"))

	case "", "file":
		file, header, err := r.FormFile("file")
		if err != nil {
			h.writeError(w, "a file is required for direct upload")
			return
		}
		defer file.Close()

		key := storage.ObjectKey(header.Filename)
		if err := h.Files.Save(ctx, key, file, header.Size, header.Header.Get("Content-Type")); err != nil {
			h.Log.Error("store uploaded file failed", zap.String("key", key), zap.Error(err))
			h.writeError(w, "could not store the uploaded file")
			return
		}
		storedKey = key
		m.FilePath = key
		m.FileName = header.Filename
		m.FileSize = header.Size

	default:
		h.writeError(w, "unknown upload method")
		return
	}

	created, err := h.Materials.Create(ctx, m)
	if err != nil {
		if storedKey != "" {
			// The material row never existed; don't orphan the object.
			if derr := h.Files.Delete(ctx, storedKey); derr != nil {
				h.Log.Warn("cleanup of stored file failed", zap.String("key", storedKey), zap.Error(derr))
			}
		}
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) {
			h.writeError(w, cmdErr.Message)
			return
		}
		h.Log.Error("create material failed", zap.Error(err))
		h.writeError(w, "could not save the material")
		return
	}

	h.Log.Info("material created",
		zap.String("id", created.ID.Hex()),
		zap.String("kind", created.Kind),
		zap.String("title", created.Title))

	h.writeJSON(w, http.StatusOK, uploadResponse{Success: true, ID: created.ID.Hex()})
}

func (h *Handler) writeError(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusOK, uploadResponse{Success: false, Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("write upload response failed", zap.Error(err))
	}
}

// parseSeed reads a non-negative counter seed; anything unparsable is zero.
func parseSeed(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
