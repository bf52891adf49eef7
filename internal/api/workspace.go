package api

import (
	"log/slog"
	"net/http"
)

// ListFiles handles GET /api/workspace.
//
//	@Summary		List workspace formula files
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/workspace [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context())
	if err != nil {
		writeError(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// GetFile handles GET /api/workspace/*.
//
//	@Summary		Get a workspace file with the verdict of each line
//	@Tags			workspace
//	@Produce		json
//	@Param			path	path		string	true	"File path"
//	@Success		200		{object}	FileDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	fd, err := h.svc.GetFile(r.Context(), path)
	if err != nil {
		writeError(w, "get file", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

// CreateFile handles POST /api/workspace.
//
//	@Summary		Create a workspace file and prove its formulas
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFileRequest	true	"File to create"
//	@Success		201		{object}	FileDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace [post]
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req CreateFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	fd, err := h.svc.CreateFile(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, "create file", err, slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusCreated, fd)
}

// UpdateFile handles PUT /api/workspace/*.
//
//	@Summary		Replace a workspace file with optimistic concurrency
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string				true	"File path"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateFileRequest	true	"Updated content"
//	@Success		200			{object}	FileDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/{path} [put]
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := r.Header.Get("If-Match")

	fd, err := h.svc.UpdateFile(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, "update file", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

// MoveFile handles PATCH /api/workspace/*.
//
//	@Summary		Rename a workspace file
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string			true	"Current file path"
//	@Param			body	body		MoveFileRequest	true	"Target path"
//	@Success		200		{object}	FileDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/{path} [patch]
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req MoveFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	fd, err := h.svc.MoveFile(r.Context(), path, req.To)
	if err != nil {
		writeError(w, "move file", err, slog.String("path", path), slog.String("to", req.To))
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

// DeleteFile handles DELETE /api/workspace/*.
//
//	@Summary		Delete a workspace file; its proofs stay in the history
//	@Tags			workspace
//	@Param			path	path	string	true	"File path"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/{path} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteFile(r.Context(), path); err != nil {
		writeError(w, "delete file", err, slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
