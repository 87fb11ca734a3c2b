package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"stock-service/pkg/config"

	"github.com/google/uuid"
)

// Upload errors
var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrInvalidPath     = errors.New("path is outside the upload directory")
	ErrFileNotFound    = errors.New("file not found")
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Store writes uploaded product images under a fixed directory and serves
// deletions constrained to that directory.
type Store struct {
	dir          string
	publicPrefix string
	maxSize      int64
}

// NewStore creates a store for the configured upload directory
func NewStore(cfg *config.UploadConfig) *Store {
	return &Store{
		dir:          cfg.Dir,
		publicPrefix: strings.TrimSuffix(cfg.PublicPrefix, "/"),
		maxSize:      cfg.MaxSizeBytes,
	}
}

// Save validates and persists one uploaded image, returning its public path.
// The stored name is a fresh UUID so the client-supplied filename never
// reaches the filesystem.
func (s *Store) Save(filename string, size int64, r io.Reader) (string, error) {
	if size > s.maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.New().String() + "." + ext
	target := filepath.Join(s.dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, s.maxSize)); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}

	return path.Join(s.publicPrefix, name), nil
}

// Delete removes a previously uploaded file given its public path. Paths
// that do not resolve inside the upload directory are rejected.
func (s *Store) Delete(publicPath string) error {
	if !strings.HasPrefix(publicPath, s.publicPrefix+"/") {
		return ErrInvalidPath
	}

	root, err := filepath.Abs(s.dir)
	if err != nil {
		return err
	}
	target, err := filepath.Abs(filepath.Join(s.dir, strings.TrimPrefix(publicPath, s.publicPrefix)))
	if err != nil {
		return err
	}
	if target == root || !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return ErrInvalidPath
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return err
	}

	return os.Remove(target)
}
