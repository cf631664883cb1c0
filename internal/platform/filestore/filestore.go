package filestore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	tempDir      = "tmp"
	permanentDir = "permanent"
)

var (
	ErrInvalidKey = errors.New("filestore: invalid storage key")
	ErrNotFound   = errors.New("filestore: file not found")
)

// Store keeps uploaded files on local disk. Uploads land under tmp/ and are
// promoted into permanent/<account>/<response>/ once the owning response is
// persisted; purged responses remove their permanent directory.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("filestore: root directory is required")
	}
	for _, dir := range []string{tempDir, permanentDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("filestore: prepare %s: %w", dir, err)
		}
	}
	return &Store{root: root, logger: logger}, nil
}

// SaveTemp writes an upload into the temporary area and returns its key.
func (s *Store) SaveTemp(filename string, src io.Reader) (string, int64, error) {
	base := sanitizeFilename(filename)
	key := filepath.ToSlash(filepath.Join(tempDir, uuid.NewString()+"_"+base))

	path, err := s.resolve(key)
	if err != nil {
		return "", 0, err
	}
	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("filestore: create temp file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("filestore: write temp file: %w", err)
	}
	return key, written, nil
}

// Promote relocates a temporary file under the permanent area for a response.
// The returned key replaces the temporary one in storage references.
func (s *Store) Promote(key string, accountID string, responseID string) (string, error) {
	if !strings.HasPrefix(key, tempDir+"/") {
		return "", ErrInvalidKey
	}
	srcPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("filestore: stat temp file: %w", err)
	}

	destKey := filepath.ToSlash(filepath.Join(permanentDir, accountID, responseID, filepath.Base(key)))
	destPath, err := s.resolve(destKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("filestore: prepare response dir: %w", err)
	}
	if err := os.Rename(srcPath, destPath); err != nil {
		return "", fmt.Errorf("filestore: relocate file: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("file promoted",
			"event", "filestore_promote",
			"module", "internal/platform/filestore",
			"layer", "platform",
			"account_id", accountID,
			"response_id", responseID,
			"storage_key", destKey,
		)
	}
	return destKey, nil
}

// Remove deletes a stored file. Missing files are not an error; purge retries
// must stay idempotent.
func (s *Store) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: remove file: %w", err)
	}
	return nil
}

// RemoveResponse deletes the permanent directory that belongs to a response.
func (s *Store) RemoveResponse(accountID string, responseID string) error {
	key := filepath.ToSlash(filepath.Join(permanentDir, accountID, responseID))
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("filestore: remove response dir: %w", err)
	}
	return nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("filestore: open file: %w", err)
	}
	return file, nil
}

func (s *Store) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, cleaned), nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
