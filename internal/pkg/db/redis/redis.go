package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClientConstructor func(opt *redis.Options) *redis.Client

// RedisClient backs OTP reply caching and settlement locks.
type RedisClient struct {
	Client *redis.Client
}

// ConnectToRedis builds the client and pings it once. newClientFunc may be nil.
func ConnectToRedis(ctx context.Context, cfg config.RedisConfig, newClientFunc RedisClientConstructor) (*RedisClient, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if newClientFunc == nil {
		newClientFunc = redis.NewClient
	}

	client := newClientFunc(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.CtxError(ctx, "Redis ping failed", err, zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.CtxInfo(ctx, "Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Bool("tls", opts.TLSConfig != nil),
	)
	return &RedisClient{Client: client}, nil
}

func clientOptions(ctx context.Context, cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout
	}
	if !cfg.EnableTLS {
		return opts, nil
	}

	tlsConfig, err := buildTLSConfig(ctx, cfg)
	if err != nil {
		logger.CtxError(ctx, "Invalid Redis TLS material", err)
		return nil, fmt.Errorf("redis tls: %w", err)
	}
	if host, _, found := strings.Cut(cfg.Addr, ":"); found && host != "" {
		tlsConfig.ServerName = host
	}
	opts.TLSConfig = tlsConfig
	return opts, nil
}

// buildTLSConfig reads CertContent as a PEM bundle. CERTIFICATE blocks become
// trusted roots; a private key block alongside them turns the first
// certificate into the client certificate.
func buildTLSConfig(ctx context.Context, cfg config.RedisConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if strings.TrimSpace(cfg.CertContent) == "" {
		return tlsConfig, nil
	}

	var certBlocks, keyBlocks [][]byte
	rest := []byte(cfg.CertContent)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		encoded := pem.EncodeToMemory(block)
		switch {
		case block.Type == "CERTIFICATE":
			certBlocks = append(certBlocks, encoded)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			keyBlocks = append(keyBlocks, encoded)
		}
	}
	if len(certBlocks) == 0 {
		return nil, errors.New("no certificate found in PEM content")
	}

	roots := x509.NewCertPool()
	for _, c := range certBlocks {
		roots.AppendCertsFromPEM(c)
	}
	tlsConfig.RootCAs = roots

	if len(keyBlocks) > 0 {
		pair, err := tls.X509KeyPair(certBlocks[0], keyBlocks[0])
		if err != nil {
			return nil, fmt.Errorf("client key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{pair}
		logger.CtxDebug(ctx, "Loaded Redis client certificate")
	}
	logger.CtxDebug(ctx, "Loaded Redis CA certificates", zap.Int("count", len(certBlocks)))
	return tlsConfig, nil
}

func (r *RedisClient) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func Disconnect(client *redis.Client) error {
	return client.Close()
}
