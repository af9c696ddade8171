// Package storage archives rendered receipts in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"
)

// ErrObjectNotFound is returned when a key has no stored object
var ErrObjectNotFound = errors.New("storage: object not found")

// ReceiptArchive stores receipt documents by key
type ReceiptArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ReceiptKey returns the archive key for a receipt, partitioned by month
func ReceiptKey(prefix, reference string, issuedAt time.Time) string {
	issuedAt = issuedAt.UTC()
	return path.Join(prefix, fmt.Sprintf("%04d/%02d", issuedAt.Year(), int(issuedAt.Month())), reference+".pdf")
}

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryArchive keeps receipts in process memory. It backs the archive when
// object storage is disabled.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		objects: make(map[string]memoryObject),
		baseURL: "memory://receipts",
	}
}

func (m *MemoryArchive) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryArchive) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	return ok, nil
}

func (m *MemoryArchive) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, ErrObjectNotFound
	}
	return m.baseURL + "/" + key, time.Now().Add(expiresIn), nil
}

// Get returns a stored object
func (m *MemoryArchive) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

var _ ReceiptArchive = (*MemoryArchive)(nil)
