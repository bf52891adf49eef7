package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/modalk/internal/prover"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *prover.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Decision procedure and history.
	r.Post("/prove", h.Prove)
	r.Get("/proofs", h.ListProofs)
	r.Get("/proofs/{checksum}", h.GetProof)
	r.Get("/search", h.Search)

	// Workspace files.
	r.Get("/workspace", h.ListFiles)
	r.Post("/workspace", h.CreateFile)
	r.Get("/workspace/*", h.GetFile)
	r.Put("/workspace/*", h.UpdateFile)
	r.Patch("/workspace/*", h.MoveFile)
	r.Delete("/workspace/*", h.DeleteFile)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
