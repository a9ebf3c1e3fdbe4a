package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
)

// FileStore keeps each layout in <dir>/<id>.mmbh.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store. If dir is empty, defaults to
// ~/.local/share/mmb/layouts/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "mmb", "layouts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) (string, error) {
	if err := errors.ValidateLayoutID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+history.Extension), nil
}

func (s *FileStore) Save(ctx context.Context, doc *history.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := assignID(doc)
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	if err := history.WriteFile(path, doc); err != nil {
		return "", fmt.Errorf("write layout file: %w", err)
	}
	return id, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*history.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	doc, err := history.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return doc, nil
}

func (s *FileStore) List(ctx context.Context) ([]history.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	var out []history.Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != history.Extension {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := history.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(entry.Name(), history.Extension)
		}
		out = append(out, doc.Summary())
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding layout files.
func (s *FileStore) Dir() string { return s.dir }

func sortNewestFirst(out []history.Summary) {
	slices.SortStableFunc(out, func(a, b history.Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

var _ Store = (*FileStore)(nil)
