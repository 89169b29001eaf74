// internal/app/features/bulkupload/routes.go
package bulkupload

import (
	"github.com/go-chi/chi/v5"
	"github.com/studypointin/studypoint/internal/app/system/auth"
)

// Routes returns the bulk-upload routes, mounted at /admin/bulk-upload.
// Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServePage)

		pr.Route("/api", func(api chi.Router) {
			api.Get("/chapters", h.ServeChapters)
			api.Get("/state", h.ServeState)
			api.Post("/files", h.HandleAddFiles)
			api.Post("/links", h.HandleAddLink)
			api.Patch("/items/{id}", h.HandleUpdateItem)
			api.Post("/items/{id}/link", h.HandleReplaceLink)
			api.Post("/items/{id}/file", h.HandleReplaceFile)
			api.Delete("/items/{id}", h.HandleRemoveItem)
			api.Post("/defaults", h.HandleSetDefaults)
			api.Post("/defaults/apply", h.HandleApplyDefaults)
			api.Post("/submit", h.HandleSubmit)
			api.Post("/reset", h.HandleReset)
		})
	})

	return r
}
