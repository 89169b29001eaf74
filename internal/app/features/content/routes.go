// internal/app/features/content/routes.go
package content

import "github.com/go-chi/chi/v5"

// Routes returns the public subject/listing routes, mounted at /subjects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{slug}", h.ServeSubject)
	r.Get("/{slug}/{kind}", h.ServeYearContent)
	r.Get("/{slug}/chapters/{chapterID}/{kind}", h.ServeChapterContent)
	return r
}

// FileRoutes returns the material delivery routes, mounted at /materials.
func FileRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}/download", h.ServeDownload)
	r.Get("/{id}/view", h.ServeView)
	return r
}
