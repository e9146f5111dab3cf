package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory image store that records every write and delete.
type MemoryStorage struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Deleted []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Files: map[string][]byte{}}
}

func (m *MemoryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + folder + "/" + uuid.NewString() + "-" + fileName

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[url] = data
	return url, nil
}

func (m *MemoryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Files, fileURL)
	m.Deleted = append(m.Deleted, fileURL)
	return nil
}

func (m *MemoryStorage) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Files)
}

// PNG is the smallest byte sequence content sniffing recognises as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
