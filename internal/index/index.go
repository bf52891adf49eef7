package index

// History is the proof history and workspace source map. Consumers depend
// on this interface rather than *DB.
type History interface {
	UpsertProof(p ProofRow) error
	GetProof(checksum string) (*ProofRow, error)
	ListProofs(limit, offset int, verdict string) ([]ProofRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	UpsertFile(f FileRow, sources []SourceRow) error
	DeleteFile(path string) error
	GetFile(path string) (*FileRow, error)
	Sources(path string) ([]SourceRow, error)
	SourcesOf(checksum string) ([]SourceRow, error)
	AllFileChecksums() (map[string]string, error)
	Ping() error
	Close() error
}

// Verify *DB satisfies History at compile time.
var _ History = (*DB)(nil)
