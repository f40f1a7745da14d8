package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/platewise/platewise-api/utils"
)

// MemoryImageService keeps uploads in memory. Tests install it through
// SetImageService so handlers never touch S3.
type MemoryImageService struct {
	mu     sync.RWMutex
	images map[string][]byte
	seq    int
}

func NewMemoryImageService() *MemoryImageService {
	return &MemoryImageService{images: make(map[string][]byte)}
}

// UploadImage applies the same validation as the S3 backend, then stores
// the bytes under a deterministic key.
func (m *MemoryImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("uploads/%d_%s", m.seq, fileHeader.Filename)
	m.images[key] = content
	return key, nil
}

func (m *MemoryImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.images[imageKey]; !ok {
		return "", fmt.Errorf("no stored image for key %s", imageKey)
	}
	return "https://images.test.platewise.local/" + imageKey, nil
}

func (m *MemoryImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, imageKey)
	return nil
}

// Stored reports whether a key is present, for test assertions.
func (m *MemoryImageService) Stored(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.images[imageKey]
	return ok
}
