package blob

import (
	"context"
	"sync"
)

// MemoryBucket is an in-memory Bucket for tests.
type MemoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryBucket creates an empty in-memory bucket issuing URLs under baseURL.
func NewMemoryBucket(baseURL string) *MemoryBucket {
	return &MemoryBucket{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

func (b *MemoryBucket) Ready(ctx context.Context) error {
	return nil
}

func (b *MemoryBucket) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectName] = append([]byte(nil), data...)
	return b.baseURL + "/" + objectName, nil
}

// Object returns a stored object's bytes, or false if it was never uploaded.
func (b *MemoryBucket) Object(objectName string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[objectName]
	return data, ok
}
