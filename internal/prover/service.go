package prover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/index"
	"github.com/starford/modalk/internal/kripke"
	"github.com/starford/modalk/internal/metrics"
	"github.com/starford/modalk/internal/storage"
)

// Proof sources, used as the metrics label.
const (
	SourceAPI       = "api"
	SourceMCP       = "mcp"
	SourceCLI       = "cli"
	SourceWorkspace = "workspace"
)

// ErrNoHistory is returned by history operations on a service built
// without one.
var ErrNoHistory = errors.New("prover: no proof history configured")

// Publisher receives change notifications. The SSE broker implements it.
type Publisher interface {
	PublishProof(checksum string, valid bool)
	PublishWorkspaceEvent(kind, path string)
}

type nopPublisher struct{}

func (nopPublisher) PublishProof(string, bool)           {}
func (nopPublisher) PublishWorkspaceEvent(string, string) {}

// Request asks for one formula to be decided. Empty Notation and
// Successors fall back to the service defaults.
type Request struct {
	Formula    string `json:"formula"`
	Notation   string `json:"notation,omitempty"`
	Successors string `json:"successors,omitempty"`
	Source     string `json:"-"`
}

// Summary is a lightweight item in a history listing.
type Summary struct {
	Checksum   string    `json:"checksum"`
	Formula    string    `json:"formula"`
	Normalized string    `json:"normalized"`
	Valid      bool      `json:"valid"`
	Successors string    `json:"successors"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service coordinates the decision procedure, the workspace and the history.
type Service struct {
	history    index.History
	store      storage.Provider
	logger     *slog.Logger
	publisher  Publisher
	notation   formula.Notation
	successors kripke.Successors
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every proof in h.
func WithHistory(h index.History) Option {
	return func(s *Service) { s.history = h }
}

// WithStore enables the workspace file operations.
func WithStore(p storage.Provider) Option {
	return func(s *Service) { s.store = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPublisher sets the change notification sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithNotation sets the default rendering notation.
func WithNotation(n formula.Notation) Option {
	return func(s *Service) { s.notation = n }
}

// WithSuccessors sets the default counter-model successor policy.
func WithSuccessors(succ kripke.Successors) Option {
	return func(s *Service) { s.successors = succ }
}

// NewService creates a prover service.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger:     slog.Default(),
		publisher:  nopPublisher{},
		notation:   formula.Symbolic,
		successors: kripke.SuccessorsShallowest,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prove decides req.Formula, records it and notifies subscribers.
func (s *Service) Prove(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = SourceAPI
	}

	n := s.notation
	if req.Notation != "" {
		var err error
		if n, err = formula.ParseNotation(req.Notation); err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
		}
	}
	succ := s.successors
	if req.Successors != "" {
		var err error
		if succ, err = kripke.ParseSuccessors(req.Successors); err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
		}
	}

	f, err := formula.Parse(req.Formula)
	if err != nil {
		metrics.RecordParseError(source)
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}

	d, rep := s.decide(source, f, succ, n)
	if s.history != nil {
		if err := s.record(d, rep); err != nil {
			return nil, err
		}
		rows, err := s.history.SourcesOf(rep.Checksum)
		if err != nil {
			return nil, err
		}
		rep.Sources = sourceRefs(rows)
	}
	s.publisher.PublishProof(rep.Checksum, rep.Valid)
	return rep, nil
}

// decide runs the procedure and records metrics.
func (s *Service) decide(source string, f formula.Formula, succ kripke.Successors, n formula.Notation) (*Decision, *Report) {
	start := time.Now()
	d := Decide(f, succ)
	elapsed := time.Since(start)

	rep := NewReport(d, n)
	rep.ID = uuid.NewString()
	rep.CreatedAt = time.Now().UTC()

	metrics.RecordProof(source, rep.Valid, elapsed, rep.Stats.Nodes)
	if d.Model != nil {
		metrics.RecordModel(d.Model.NumWorlds, d.Verified, succ.String())
		if !d.Verified {
			s.logger.Warn("prover: counter-model does not falsify formula",
				slog.String("formula", formula.String(d.Normalized)),
				slog.String("successors", succ.String()),
				slog.Int("worlds", d.Model.NumWorlds))
		}
	}
	s.logger.Debug("prover: decided",
		slog.String("source", source),
		slog.String("checksum", rep.Checksum),
		slog.String("verdict", rep.Verdict),
		slog.Duration("elapsed", elapsed))
	return d, rep
}

func (s *Service) record(d *Decision, rep *Report) error {
	row, err := proofRow(d, rep)
	if err != nil {
		return err
	}
	return s.history.UpsertProof(row)
}

// Get returns the recorded report for checksum, in symbolic notation.
func (s *Service) Get(_ context.Context, checksum string) (*Report, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	row, err := s.history.GetProof(checksum)
	if err != nil {
		return nil, err
	}
	rep, err := reportFromRow(row)
	if err != nil {
		return nil, err
	}
	rows, err := s.history.SourcesOf(checksum)
	if err != nil {
		return nil, err
	}
	rep.Sources = sourceRefs(rows)
	return rep, nil
}

// List returns a page of the history, newest first.
func (s *Service) List(_ context.Context, limit, offset int, verdict string) ([]Summary, int, error) {
	if s.history == nil {
		return nil, 0, ErrNoHistory
	}
	rows, total, err := s.history.ListProofs(limit, offset, verdict)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Summary, len(rows))
	for i, r := range rows {
		items[i] = Summary{
			Checksum:   r.Checksum,
			Formula:    r.Formula,
			Normalized: r.Normalized,
			Valid:      r.Valid,
			Successors: r.Successors,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the history.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	res, err := s.history.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
