package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modalk/internal/prover"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *prover.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *prover.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeRequest reads a JSON body into v and validates it. On failure it
// writes a 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// Prove handles POST /api/prove.
//
//	@Summary		Decide a formula and synthesize a counter-model when it is invalid
//	@Tags			prover
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProveRequest	true	"Formula to decide"
//	@Success		200		{object}	Report
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prove [post]
func (h *Handler) Prove(w http.ResponseWriter, r *http.Request) {
	var req ProveRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	rep, err := h.svc.Prove(r.Context(), prover.Request{
		Formula:    req.Formula,
		Notation:   req.Notation,
		Successors: req.Successors,
		Source:     prover.SourceAPI,
	})
	if err != nil {
		writeError(w, "prove", err, slog.String("formula", req.Formula))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListProofs handles GET /api/proofs.
//
//	@Summary		List recorded proofs, newest first
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			verdict	query		string	false	"Filter by verdict"	Enums(valid, invalid)
//	@Success		200		{object}	ProofListResponse
//	@Security		BearerAuth
//	@Router			/proofs [get]
func (h *Handler) ListProofs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	verdict := q.Get("verdict")
	if err := validation.Validate(verdict, validation.In("valid", "invalid")); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("verdict: "+err.Error()))
		return
	}

	items, total, err := h.svc.List(r.Context(), limit, offset, verdict)
	if err != nil {
		writeError(w, "list proofs", err)
		return
	}
	writeJSON(w, http.StatusOK, ProofListResponse{Proofs: items, Total: total})
}

// GetProof handles GET /api/proofs/{checksum}.
//
//	@Summary		Get a recorded proof with its trace and counter-model
//	@Tags			history
//	@Produce		json
//	@Param			checksum	path		string	true	"Proof checksum"
//	@Success		200			{object}	Report
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs/{checksum} [get]
func (h *Handler) GetProof(w http.ResponseWriter, r *http.Request) {
	cs := chi.URLParam(r, "checksum")
	rep, err := h.svc.Get(r.Context(), cs)
	if err != nil {
		writeError(w, "get proof", err, slog.String("checksum", cs))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across recorded proofs
//	@Tags			history
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// filePath extracts the workspace path from the URL (everything after /api/workspace/).
// Supports encoded slashes from OpenAPI clients (e.g. axioms%2Fk.modal).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
