// Package file stores alias tables as a JSON file next to a ".version"
// sidecar holding the version string.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"champhelper/internal/resolve"
	"champhelper/internal/storage"
)

func init() {
	storage.Register("file", New)
}

// Store is a directory-backed storage.TableStore.
type Store struct {
	dir  string
	name string
}

// New returns a Store rooted at cfg.DSN ("./cache" when empty). The directory
// is created on first Save.
func New(_ context.Context, cfg storage.Config) (storage.TableStore, error) {
	dir := strings.TrimSpace(cfg.DSN)
	if dir == "" {
		dir = "./cache"
	}
	return &Store{dir: dir, name: cfg.NameOrDefault()}, nil
}

func (s *Store) tablePath() string   { return filepath.Join(s.dir, s.name+".json") }
func (s *Store) versionPath() string { return filepath.Join(s.dir, s.name+".version") }

// Load implements storage.TableStore.
func (s *Store) Load(ctx context.Context, version string) (*resolve.AliasTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, err := os.ReadFile(s.versionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}

	payload, err := os.ReadFile(s.tablePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return storage.Match(stored, version, payload)
}

// Save implements storage.TableStore. The table is written before the
// version, so a crash in between leaves a stale version and a forced rebuild
// rather than a mismatched pair.
func (s *Store) Save(ctx context.Context, version string, t *resolve.AliasTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := storage.EncodeTable(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	// Invalidate first; a reader must never pair the new version with the old table.
	if err := os.Remove(s.versionPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidate version: %w", err)
	}
	if err := writeFileAtomic(s.tablePath(), payload); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := writeFileAtomic(s.versionPath(), []byte(version)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	return nil
}

// Close implements storage.TableStore.
func (s *Store) Close() error { return nil }

// writeFileAtomic writes to a temp file in the same directory and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
