package v1handler

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the v1 router. All endpoints require a bearer token; the
// admin subtree additionally requires the admin claim.
func (h *Handler) Routes(sec *SecHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(sec.Authenticate)

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.CreateProject)
		r.Get("/", h.ListProjects)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Delete("/", h.DeleteProject)
			r.Post("/pause", h.PauseProject)
			r.Post("/resume", h.ResumeProject)
			r.Get("/domains", h.ListProjectDomains)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin)

		r.Get("/settings", h.ListSettings)
		r.Put("/settings/{key}", h.UpdateSetting)

		r.Get("/exclusions", h.ListExclusions)
		r.Put("/exclusions", h.ReplaceExclusions)
		r.Get("/preservations", h.ListPreservations)
		r.Put("/preservations", h.ReplacePreservations)
		r.Get("/extension-prefixes", h.ListExtensionPrefixes)
		r.Put("/extension-prefixes", h.ReplaceExtensionPrefixes)

		r.Post("/tldsync", h.SyncTLDs)
		r.Post("/metrics-sweep", h.RunMetricsSweep)
		r.Post("/reconcile", h.RunReconcile)
		r.Post("/projects/{id}/repair", h.RepairProjectLinks)
	})

	return r
}
