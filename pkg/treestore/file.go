package treestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

// FileStore stores each tree as <key>.json in a directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "tree dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create tree dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if err := errors.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

func (s *FileStore) Put(ctx context.Context, rec *Record) (string, error) {
	if err := prepare(rec); err != nil {
		return "", err
	}
	path, err := s.path(rec.Key)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tree: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write tree file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write tree file")
	}
	return rec.Key, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (*Record, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(key)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read tree file")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse tree %s", key)
	}
	return &rec, nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove tree file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the tree files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
