package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize caps uploads at 2 MiB.
const MaxFileSize = 2 << 20

var (
	ErrNotAnImage   = errors.New("only image files are allowed")
	ErrFileTooLarge = errors.New("file exceeds the 2 MiB limit")
)

// Storage writes uploaded images to a directory on disk. Stored names get
// a uuid prefix so original names can never collide or escape the
// directory.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Save validates and stores an uploaded image, returning the stored filename.
func (s *Storage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", ErrNotAnImage
	}

	filename := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(header.Filename))

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filename, nil
}

// Path resolves a stored filename to its on-disk path. The name is reduced
// to its base so a crafted request cannot traverse out of the directory.
func (s *Storage) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}
