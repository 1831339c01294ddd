package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes uploaded files to a directory on the local disk and
// hands back the path they are served from.
type LocalStore struct {
	dir       string // filesystem directory uploads are written to
	urlPrefix string // public path prefix recorded on the listing
}

// NewLocalStore creates the upload directory if needed and returns a
// store rooted there.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: urlPrefix,
	}, nil
}

// Save writes one uploaded file under a timestamped name and returns the
// server-relative path. The original filename is kept as a suffix so the
// stored files stay recognizable.
func (s *LocalStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file for upload %s: %w", file.Filename, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", file.Filename, err)
	}

	return s.urlPrefix + "/" + name, nil
}
