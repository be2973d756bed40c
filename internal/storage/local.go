package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalAssetStore keeps assets on the local filesystem under a base
// directory and serves them under a URL prefix.
type LocalAssetStore struct {
	baseDir   string
	urlPrefix string
}

// NewLocalAssetStore creates the base directory if needed.
func NewLocalAssetStore(baseDir, urlPrefix string) (*LocalAssetStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &LocalAssetStore{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalAssetStore) Save(name string, r io.Reader) (string, error) {
	clean, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(clean)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(clean)
		return "", fmt.Errorf("write asset: %w", err)
	}
	return s.urlPrefix + "/" + filepath.Base(clean), nil
}

func (s *LocalAssetStore) Remove(name string) error {
	clean, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

// resolve rejects names that would escape the base directory.
func (s *LocalAssetStore) resolve(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return filepath.Join(s.baseDir, base), nil
}
