package cleanup

import (
	"context"
	"net/http"
	"time"

	"payja-lending/internal/pkg/db/mongo"
	"payja-lending/internal/pkg/db/redis"
	"payja-lending/internal/pkg/gcs"
	"payja-lending/internal/pkg/kafka"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/utils/worker"
)

// Resources groups everything the service opens at startup. Nil members are skipped.
type Resources struct {
	Server          *http.Server
	WorkerPool      *worker.WorkerPool
	PubSubPublisher interface{ Close() error }
	KafkaProducer   *kafka.KafkaProducer
	GCSClient       gcs.GcsInterface
	MongoClient     *mongo.MongoClient
	RedisClient     *redis.RedisClient
	TracerShutdown  func(context.Context) error
}

// CleanupResources releases resources in dependency order: stop taking requests,
// drain background work, flush publishers, then close the stores.
func CleanupResources(ctx context.Context, r Resources) {
	logger.CtxInfo(ctx, log_messages.CleanupStarted)

	cleanupHTTPServer(ctx, r.Server)
	if r.WorkerPool != nil {
		r.WorkerPool.Stop()
		logger.CtxInfo(ctx, "Worker pool drained")
	}
	closeResource(ctx, r.PubSubPublisher, "PubSub publisher")
	if r.KafkaProducer != nil {
		closeResource(ctx, r.KafkaProducer, "Kafka producer")
	}
	if r.GCSClient != nil {
		r.GCSClient.Close(ctx)
		logger.CtxInfo(ctx, log_messages.GCSClientClosed)
	}
	cleanupMongoResource(ctx, r.MongoClient)
	cleanupRedisResource(ctx, r.RedisClient)
	if r.TracerShutdown != nil {
		if err := r.TracerShutdown(ctx); err != nil {
			logger.CtxError(ctx, "Failed to shutdown tracer provider", err)
		}
	}

	logger.CtxInfo(ctx, log_messages.CleanupCompleted)
}

func closeResource(ctx context.Context, resource interface{ Close() error }, name string) {
	if resource == nil {
		return
	}
	if err := resource.Close(); err != nil {
		logger.CtxError(ctx, "Failed to close "+name, err)
		return
	}
	logger.CtxInfo(ctx, name+" closed successfully")
}

func cleanupMongoResource(ctx context.Context, mongoClient *mongo.MongoClient) {
	if mongoClient == nil || mongoClient.Client == nil {
		return
	}
	mongoCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Client.Disconnect(mongoCtx); err != nil {
		logger.CtxError(mongoCtx, "Failed to disconnect MongoDB client", err)
		return
	}
	logger.CtxInfo(mongoCtx, "MongoDB client disconnected successfully")
}

func cleanupRedisResource(ctx context.Context, redisClient *redis.RedisClient) {
	if redisClient == nil || redisClient.Client == nil {
		return
	}
	if err := redis.Disconnect(redisClient.Client); err != nil {
		logger.CtxError(ctx, "Failed to close Redis client", err)
		return
	}
	logger.CtxInfo(ctx, "Redis client closed successfully")
}

func cleanupHTTPServer(ctx context.Context, server *http.Server) {
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.CtxError(ctx, "Failed to shutdown HTTP server", err)
		return
	}
	logger.CtxInfo(ctx, "HTTP server shutdown successfully")
}
