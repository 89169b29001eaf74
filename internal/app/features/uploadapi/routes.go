// internal/app/features/uploadapi/routes.go
package uploadapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/studypointin/studypoint/internal/app/system/auth"
)

// Routes returns the upload API routes, mounted at /api/upload. Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleUpload)
	})

	return r
}
