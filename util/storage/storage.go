// Package storage keeps uploaded cover images on local disk, one
// subdirectory per user.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileStore struct {
	base string
}

func New(base string) *FileStore { return &FileStore{base: base} }

// Save writes the content to <base>/users/<userID>/<uuid>.<ext> and returns
// the stored path.
func (s *FileStore) Save(src io.Reader, originalName string, userID int64) (string, error) {
	dir := filepath.Join(s.base, "users", fmt.Sprint(userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString()
	if ext := fileExtension(originalName); ext != "" {
		name += "." + ext
	}
	target := filepath.Join(dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return target, nil
}

func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
