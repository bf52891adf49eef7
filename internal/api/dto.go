package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modalk/internal/index"
	"github.com/starford/modalk/internal/models"
	"github.com/starford/modalk/internal/prover"
)

const maxFormulaLength = 4096

// ProveRequest is the request body for deciding a formula.
type ProveRequest struct {
	Formula    string `json:"formula" example:"[](p -> q) -> ([]p -> []q)" validate:"required"`
	Notation   string `json:"notation,omitempty" example:"ascii"`
	Successors string `json:"successors,omitempty" example:"shallowest"`
}

// Validate checks the request fields.
func (r ProveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Formula, validation.Required, validation.Length(1, maxFormulaLength)),
		validation.Field(&r.Notation, validation.In("symbolic", "unicode", "ascii")),
		validation.Field(&r.Successors, validation.In("shallowest", "all")),
	)
}

// CreateFileRequest is the request body for creating a workspace file.
type CreateFileRequest struct {
	Path    string `json:"path" example:"axioms/k.modal" validate:"required"`
	Content string `json:"content" example:"[](p -> q) -> ([]p -> []q)" validate:"required"`
}

// Validate checks the request fields.
func (r CreateFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateFileRequest is the request body for replacing a workspace file.
type UpdateFileRequest struct {
	Content string `json:"content" example:"<>p -> []p" validate:"required"`
}

// Validate checks the request fields.
func (r UpdateFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// MoveFileRequest is the request body for renaming a workspace file.
type MoveFileRequest struct {
	To string `json:"to" example:"archive/k.modal" validate:"required"`
}

// Validate checks the request fields.
func (r MoveFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required),
	)
}

// Report is the decision response type (aliased from the domain layer).
type Report = prover.Report

// FileDetail is the workspace file response type (aliased from the domain layer).
type FileDetail = prover.FileDetail

// ProofListResponse wraps paginated history listings.
type ProofListResponse struct {
	Proofs []prover.Summary `json:"proofs" validate:"required"`
	Total  int              `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// FileListResponse wraps the workspace listing.
type FileListResponse struct {
	Files []models.FileMetadata `json:"files" validate:"required"`
}
