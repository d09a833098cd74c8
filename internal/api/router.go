package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted. authEnabled
// controls whether Bearer token auth is enforced. sseHandler, if non-nil, is
// mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pickers.
	r.Post("/pick/file", h.PickFile)
	r.Post("/pick/folder", h.PickFolder)

	// Payload snapshots.
	r.Get("/document", h.GetDocument)
	r.Get("/folder", h.GetFolder)

	// Watch coordinators.
	r.Post("/watch/file", h.StartFileWatch)
	r.Delete("/watch/file", h.StopFileWatch)
	r.Post("/watch/folder", h.StartFolderWatch)
	r.Delete("/watch/folder", h.StopFolderWatch)

	// Launch hand-off.
	r.Post("/pending/consume", h.ConsumePending)
	r.Get("/startup-options", h.StartupOptions)
	r.Post("/instance/open", h.InstanceOpen)

	// Desktop integration.
	r.Post("/editor/open", h.OpenInEditor)
	r.Get("/theme/system", h.SystemTheme)

	// History.
	r.Get("/recent", h.Recent)
	r.Delete("/recent", h.ClearRecent)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
