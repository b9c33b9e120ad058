package offload

import (
	"context"
	"sync"
)

// UploadRecord is one recorded mock upload.
type UploadRecord struct {
	LocalPath    string
	CacheControl string
}

// MockUploader records uploads for tests and dry runs.
type MockUploader struct {
	// BaseURL is the simulated public base; defaults to a placeholder.
	BaseURL string

	// Err, when set, fails every upload.
	Err error

	mu       sync.Mutex
	Uploaded map[string]UploadRecord // key -> record
}

// Upload implements Uploader.
func (m *MockUploader) Upload(_ context.Context, localPath, key, cacheControl string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Uploaded == nil {
		m.Uploaded = make(map[string]UploadRecord)
	}
	m.Uploaded[key] = UploadRecord{LocalPath: localPath, CacheControl: cacheControl}

	base := m.BaseURL
	if base == "" {
		base = "https://cdn.example.com"
	}
	return base + "/" + key, nil
}
