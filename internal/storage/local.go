package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalFileStorage keeps files on the local filesystem, served by the API
// process itself. Default in development.
type LocalFileStorage struct {
	basePath string
	baseURL  string
}

func NewLocalFileStorage(basePath, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalFileStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveFile writes the content to disk under a collision-free name
func (s *LocalFileStorage) SaveFile(ctx context.Context, file io.Reader, filename string, contentType string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		chunks := strings.Split(contentType, "/")
		if len(chunks) == 2 {
			ext = "." + chunks[1]
		}
	}

	name := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	fullPath := filepath.Join(s.basePath, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file on disk: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, name), nil
}

// DeleteFile removes a file from disk; already-gone files are a no-op
func (s *LocalFileStorage) DeleteFile(ctx context.Context, ref string) error {
	// Only the final path element is trusted; everything before it is the
	// URL prefix.
	name := filepath.Base(strings.TrimRight(ref, "/"))
	if name == "" || name == "." || name == ".." {
		return nil
	}

	fullPath := filepath.Join(s.basePath, name)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
