package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"payja-lending/internal/pkg/config"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testBucket = "payja-receipts"

func newFakeGCS(t *testing.T, handler http.Handler) *GCSClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(
		context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return &GCSClient{Client: client, BucketName: testBucket, FolderName: "settlements"}
}

func TestNewGCSClient(t *testing.T) {
	client, err := NewGCSClient(context.Background(),
		config.GCSConfig{BucketName: testBucket, FolderName: "settlements"},
		option.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, testBucket, client.BucketName)
	client.Close(context.Background())
}

func TestCloseNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		(&GCSClient{}).Close(context.Background())
	})
}

func TestUploadJSON(t *testing.T) {
	var (
		mu    sync.Mutex
		query string
		body  string
	)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		query = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"settlements/LN1.json","bucket":"payja-receipts"}`))
	})

	g := newFakeGCS(t, handler)
	err := g.UploadJSON(context.Background(), "LN1.json", map[string]string{"loanId": "LN1"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, query, "ifGenerationMatch=0")
	assert.True(t, strings.Contains(body, `"loanId":"LN1"`))
}

func TestUploadJSONAlreadyExists(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"error":{"code":412,"message":"conditionNotMet"}}`))
	})

	g := newFakeGCS(t, handler)
	err := g.UploadJSON(context.Background(), "LN1.json", map[string]string{"loanId": "LN1"})
	assert.ErrorIs(t, err, ErrObjectExists)
}

func TestUploadJSONMarshalError(t *testing.T) {
	g := &GCSClient{BucketName: testBucket}
	err := g.UploadJSON(context.Background(), "bad.json", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
