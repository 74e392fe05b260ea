package assignments

import (
	"github.com/go-chi/chi/v5"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/domain/models"
)

// Routes returns the router for assignment endpoints. All routes require
// a signed-in user; creation and mutation are manager-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Get("/engineers/{id}/capacity", h.ServeCapacity)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleManager))
		r.Post("/", h.ServeCreate)
		r.Patch("/{id}", h.ServePatch)
		r.Delete("/{id}", h.ServeDelete)
	})

	return r
}
