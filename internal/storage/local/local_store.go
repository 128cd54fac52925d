package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vpnvalidator/internal/port"
)

type localStore struct {
	root string
}

// NewLocalStore creates an ObjectStorage backed by a directory tree.
// Keys map to file paths under root; path traversal outside root is
// rejected.
func NewLocalStore(root string) (port.ObjectStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &localStore{root: abs}, nil
}

func (s *localStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if p != s.root && !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return p, nil
}

func (s *localStore) Put(ctx context.Context, input port.PutInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(input.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("local put mkdir: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("local put create: %w", err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("local put write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("local put close: %w", err)
	}
	return nil
}

func (s *localStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("local get: %w", err)
	}
	return data, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
