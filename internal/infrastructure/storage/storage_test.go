package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReceiptKey(t *testing.T) {
	key := ReceiptKey("receipts/", "FC-ABC", time.Date(2026, 3, 9, 23, 0, 0, 0, time.FixedZone("x", -5*3600)))
	assert.Equal(t, "receipts/2026/03/FC-ABC.pdf", key)
	assert.Equal(t, "2026/01/FC-1.pdf", ReceiptKey("", "FC-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMemoryArchive(t *testing.T) {
	a := NewMemoryArchive()
	ctx := context.Background()

	require.Error(t, a.Put(ctx, "", nil, "application/pdf"))

	data := []byte("%PDF")
	require.NoError(t, a.Put(ctx, "receipts/FC-1.pdf", data, "application/pdf"))
	data[0] = 'X'

	got, ct, ok := a.Get("receipts/FC-1.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF"), got, "stored bytes are copied")
	assert.Equal(t, "application/pdf", ct)

	exists, err := a.Exists(ctx, "receipts/FC-1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	u, exp, err := a.DownloadURL(ctx, "receipts/FC-1.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://receipts/receipts/FC-1.pdf", u)
	assert.True(t, exp.After(time.Now()))

	_, _, err = a.DownloadURL(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewS3Archive_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Archive(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	e, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", e)

	e, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", e)

	e, err = normalizeEndpoint("", true)
	require.NoError(t, err)
	assert.Empty(t, e)
}

// fakeS3 answers path-style PutObject and HeadObject requests
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestArchive(t *testing.T) (*S3Archive, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := NewS3Archive(context.Background(), &config.StorageConfig{
		Endpoint:     srv.URL,
		Bucket:       "receipts",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return a, fake
}

func TestS3Archive_PutAndExists(t *testing.T) {
	a, fake := newTestArchive(t)
	ctx := context.Background()

	exists, err := a.Exists(ctx, "2026/06/FC-1.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, a.Put(ctx, "2026/06/FC-1.pdf", []byte("%PDF-1.3"), "application/pdf"))

	fake.mu.Lock()
	stored := fake.objects["/receipts/2026/06/FC-1.pdf"]
	contentType := fake.types["/receipts/2026/06/FC-1.pdf"]
	fake.mu.Unlock()
	assert.Equal(t, []byte("%PDF-1.3"), stored)
	assert.Equal(t, "application/pdf", contentType)

	exists, err = a.Exists(ctx, "2026/06/FC-1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestS3Archive_DownloadURL(t *testing.T) {
	a, _ := newTestArchive(t)

	u, exp, err := a.DownloadURL(context.Background(), "2026/06/FC-1.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.Contains(u, "/receipts/2026/06/FC-1.pdf"))
	assert.Contains(t, u, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	_, _, err = a.DownloadURL(context.Background(), "", time.Minute)
	assert.Error(t, err)
	assert.Equal(t, "receipts", a.Bucket())
}
