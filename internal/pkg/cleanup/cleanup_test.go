package cleanup

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"payja-lending/internal/pkg/db/redis"
	"payja-lending/internal/pkg/utils/worker"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error { c.closed = true; return c.err }

type fakeGCS struct{ closed bool }

func (f *fakeGCS) UploadJSON(context.Context, string, any) error { return nil }
func (f *fakeGCS) Close(context.Context)                         { f.closed = true }

func TestCleanupResourcesAllNil(t *testing.T) {
	assert.NotPanics(t, func() {
		CleanupResources(context.Background(), Resources{})
	})
}

func TestCleanupResourcesClosesEverything(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := &redis.RedisClient{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}

	pool := worker.NewWorkerPool(2)
	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })

	pub := &closer{err: errors.New("already closed")}
	gcs := &fakeGCS{}
	var tracerStopped bool

	CleanupResources(context.Background(), Resources{
		Server:          &http.Server{},
		WorkerPool:      pool,
		PubSubPublisher: pub,
		GCSClient:       gcs,
		RedisClient:     rc,
		TracerShutdown: func(context.Context) error {
			tracerStopped = true
			return nil
		},
	})

	assert.True(t, ran.Load())
	assert.True(t, pub.closed)
	assert.True(t, gcs.closed)
	assert.True(t, tracerStopped)
	assert.Error(t, rc.Client.Ping(context.Background()).Err())
}
