package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/modalk/internal/apperr"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempWorkspace(t)
	content := []byte("# K\n[](p -> q) -> ([]p -> []q)\n")
	if err := s.Write("k.modal", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("k.modal")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Write("a/b/c.modal", []byte("p")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.modal")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "p" {
		t.Errorf("content = %q", got)
	}
}

func TestRead_NotFound(t *testing.T) {
	s := tempWorkspace(t)
	_, err := s.Read("missing.modal")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("del.modal", []byte("p"))
	if err := s.Delete("del.modal"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.modal"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("del.modal"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("old.modal", []byte("p"))
	if err := s.Move("old.modal", "sub/new.modal"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := s.Read("sub/new.modal"); err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if _, err := s.Read("old.modal"); err == nil {
		t.Error("old path should not exist")
	}

	_ = s.Write("other.modal", []byte("q"))
	if err := s.Move("other.modal", "sub/new.modal"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("move onto existing err = %v, want ErrAlreadyExists", err)
	}
}

func TestList_SortedFormulaFilesOnly(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("b.modal", []byte("b"))
	_ = s.Write("sub/a.modal", []byte("a"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.md"), []byte("not a formula file"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "b.modal" || items[1].Path != "sub/a.modal" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" {
		t.Error("expected checksum")
	}
}

func TestRejectsOtherExtensions(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Write("notes.txt", []byte("x")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)
	for _, p := range []string{"../../etc/passwd.modal", "../outside.modal", "/etc/shadow.modal"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("write to %q: err = %v, want ErrInvalidInput", p, err)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("atomic.modal", []byte("p"))
	if err := s.Write("atomic.modal", []byte("q")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.modal")
	if string(got) != "q" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, tempPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(f, nil, 0o644)
	if _, err := NewFS(f); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestExists(t *testing.T) {
	s := tempWorkspace(t)
	if ok, err := s.Exists("k.modal"); err != nil || ok {
		t.Fatalf("Exists before write = %v, %v", ok, err)
	}
	_ = s.Write("k.modal", []byte("p"))
	if ok, err := s.Exists("k.modal"); err != nil || !ok {
		t.Errorf("Exists after write = %v, %v", ok, err)
	}
	if _, err := s.Exists("../k.modal"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Exists outside root err = %v", err)
	}
}

func TestSizeLimit(t *testing.T) {
	s := tempWorkspace(t)
	big := make([]byte, MaxFileSize+1)
	if err := s.Write("big.modal", big); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Write oversize err = %v, want ErrInvalidInput", err)
	}
	_ = os.WriteFile(filepath.Join(s.Root(), "big.modal"), big, 0o644)
	if _, err := s.Read("big.modal"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Read oversize err = %v, want ErrInvalidInput", err)
	}
}

func TestList_SkipsHiddenDirs(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("a.modal", []byte("p"))
	_ = os.MkdirAll(filepath.Join(s.Root(), ".git"), 0o755)
	_ = os.WriteFile(filepath.Join(s.Root(), ".git", "x.modal"), []byte("p"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "a.modal" {
		t.Errorf("items = %+v", items)
	}
}
