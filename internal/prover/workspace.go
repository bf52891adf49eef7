package prover

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/checksum"
	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/index"
	"github.com/starford/modalk/internal/metrics"
	"github.com/starford/modalk/internal/models"
	"github.com/starford/modalk/internal/parser"
)

// ErrNoWorkspace is returned by file operations on a service built
// without a store.
var ErrNoWorkspace = errors.New("prover: no workspace configured")

// Workspace event kinds passed to the Publisher.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// FileDetail is a workspace file with the verdict recorded for each line.
type FileDetail struct {
	models.FormulaFile
	Content    string             `json:"content"`
	Results    []models.SourceRef `json:"results"`
	Mismatches int                `json:"mismatches"`
}

// GetFile reads and parses a workspace file.
func (s *Service) GetFile(_ context.Context, path string) (*FileDetail, error) {
	if s.store == nil {
		return nil, ErrNoWorkspace
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	return s.buildFileDetail(path, data)
}

// CreateFile writes a new workspace file and proves it.
func (s *Service) CreateFile(_ context.Context, path string, content []byte) (*FileDetail, error) {
	if s.store == nil {
		return nil, ErrNoWorkspace
	}
	exists, err := s.store.Exists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}
	if _, err := parser.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	s.publisher.PublishWorkspaceEvent(EventCreated, path)
	return s.buildFileDetail(path, content)
}

// UpdateFile replaces a workspace file. A non-empty ifMatch must equal the
// checksum of the current content.
func (s *Service) UpdateFile(_ context.Context, path string, content []byte, ifMatch string) (*FileDetail, error) {
	if s.store == nil {
		return nil, ErrNoWorkspace
	}
	existing, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(ifMatch, existing) {
		return nil, apperr.ErrConflict
	}
	if _, err := parser.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	s.publisher.PublishWorkspaceEvent(EventUpdated, path)
	return s.buildFileDetail(path, content)
}

// DeleteFile removes a workspace file and its source lines.
func (s *Service) DeleteFile(_ context.Context, path string) error {
	if s.store == nil {
		return ErrNoWorkspace
	}
	if err := s.store.Delete(path); err != nil {
		return err
	}
	if s.history != nil {
		if err := s.history.DeleteFile(path); err != nil {
			return err
		}
	}
	s.publisher.PublishWorkspaceEvent(EventDeleted, path)
	return nil
}

// MoveFile renames a workspace file and re-records it under the new path.
func (s *Service) MoveFile(ctx context.Context, from, to string) (*FileDetail, error) {
	if s.store == nil {
		return nil, ErrNoWorkspace
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if s.history != nil {
		if err := s.history.DeleteFile(from); err != nil {
			return nil, err
		}
	}
	data, err := s.store.Read(to)
	if err != nil {
		return nil, err
	}
	if err := s.IndexFile(to, data); err != nil {
		return nil, err
	}
	s.publisher.PublishWorkspaceEvent(EventDeleted, from)
	s.publisher.PublishWorkspaceEvent(EventCreated, to)
	return s.buildFileDetail(to, data)
}

// ListFiles returns every workspace file, sorted by path.
func (s *Service) ListFiles(_ context.Context) ([]models.FileMetadata, error) {
	if s.store == nil {
		return nil, ErrNoWorkspace
	}
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	return nonNilSlice(metas), nil
}

// IndexFile proves every formula line of a workspace file and records the
// file with its source lines. Unrecognized lines are logged and skipped.
// It satisfies index.FileIndexer so sync and the watcher can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	if s.history == nil {
		return ErrNoHistory
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	sources := make([]index.SourceRow, 0, len(res.Entries))
	for _, e := range res.Entries {
		f, err := formula.Parse(e.Formula)
		if err != nil {
			metrics.RecordParseError(SourceWorkspace)
			s.logger.Warn("workspace: unrecognized formula",
				slog.String("path", path),
				slog.Int("line", e.Line),
				slog.String("error", err.Error()))
			continue
		}
		d, rep := s.decide(SourceWorkspace, f, s.successors, formula.Symbolic)
		if err := s.record(d, rep); err != nil {
			return err
		}
		ref := models.SourceRef{Path: path, Line: e.Line, Checksum: rep.Checksum, Expect: res.Expect, Valid: rep.Valid}
		if ref.Mismatch() {
			metrics.RecordExpectationMismatch()
			s.logger.Warn("workspace: expectation mismatch",
				slog.String("path", path),
				slog.Int("line", e.Line),
				slog.String("expect", string(res.Expect)),
				slog.String("verdict", rep.Verdict))
		}
		sources = append(sources, index.SourceRow{Path: path, Line: e.Line, Checksum: rep.Checksum})
	}

	err = s.history.UpsertFile(index.FileRow{
		Path:      path,
		Title:     res.Title,
		Expect:    string(res.Expect),
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}, sources)
	if err != nil {
		return err
	}
	metrics.RecordFileIndexed()
	return nil
}

// buildFileDetail constructs a FileDetail from raw data without re-reading the file.
func (s *Service) buildFileDetail(path string, data []byte) (*FileDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	fd := &FileDetail{
		FormulaFile: models.FormulaFile{
			Path:      path,
			Title:     res.Title,
			Expect:    res.Expect,
			Entries:   nonNilSlice(res.Entries),
			Checksum:  checksum.Sum(data),
			UpdatedAt: time.Now().UTC(),
		},
		Content: string(data),
		Results: []models.SourceRef{},
	}
	if s.history == nil {
		return fd, nil
	}
	rows, err := s.history.Sources(path)
	if err != nil {
		return nil, err
	}
	fd.Results = sourceRefs(rows)
	for _, r := range fd.Results {
		if r.Mismatch() {
			fd.Mismatches++
		}
	}
	return fd, nil
}

// Verify *Service satisfies index.FileIndexer at compile time.
var _ index.FileIndexer = (*Service)(nil)
