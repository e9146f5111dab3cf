package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the route under which local uploads are served.
const URLPrefix = "/uploads"

type localStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage stores images under dir and returns relative /uploads/... paths,
// prefixed by baseURL when one is configured.
func NewLocalStorage(dir, baseURL string) (ImageStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &localStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory the router serves under URLPrefix.
func (s *localStorage) Dir() string {
	return s.dir
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	folder = sanitizeSegment(folder)
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))

	targetDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	target := filepath.Join(targetDir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return s.baseURL + path.Join(URLPrefix, folder, name), nil
}

func (s *localStorage) DeleteImage(ctx context.Context, fileURL string) error {
	rel := strings.TrimPrefix(fileURL, s.baseURL)
	rel = strings.TrimPrefix(rel, URLPrefix+"/")
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("could not resolve local path from URL: %s", fileURL)
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func sanitizeSegment(segment string) string {
	segment = strings.Trim(strings.ReplaceAll(segment, "..", ""), "/\\")
	if segment == "" {
		return "misc"
	}
	return segment
}
