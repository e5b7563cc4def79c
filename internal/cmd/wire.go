package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aveekpatra/Domain-AI/internal/ailink"
	"github.com/aveekpatra/Domain-AI/internal/ailink/prompt"
	"github.com/aveekpatra/Domain-AI/internal/config"
	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/store"
)

// bucketBackend is the AI-tier bucket store selected by ratelimit.store.
type bucketBackend struct {
	Store ratelimit.Store
	// Persistent is set for the libsql backend, which the limits
	// commands inspect directly.
	Persistent *store.BucketStore

	ping  func(ctx context.Context) error
	close func() error
}

// CheckHealth reports whether the backing store answers.
func (b *bucketBackend) CheckHealth(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases connections held by the backend.
func (b *bucketBackend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func openBucketStore(ctx context.Context, cfg *config.Config) (*bucketBackend, error) {
	switch cfg.RateLimit.Store {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RateLimit.Redis.Addr, err)
		}

		rs := ratelimit.NewRedisStore(rdb, ratelimit.WithRedisPrefix(cfg.RateLimit.Redis.Prefix))
		return &bucketBackend{Store: rs, ping: rs.Ping, close: rdb.Close}, nil

	case config.StoreLibsql:
		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		bs := store.NewBucketStore(db)
		return &bucketBackend{Store: bs, Persistent: bs, ping: db.Ping, close: db.Close}, nil

	default:
		return &bucketBackend{Store: ratelimit.NewMemoryStore()}, nil
	}
}

// newRegistrar returns nil when neither credentials nor a fallback are
// configured; handlers report that as a configuration error.
func newRegistrar(cfg config.RegistrarConfig) (registrar.Client, error) {
	if !cfg.HasCredentials() && cfg.Fallback == "" {
		return nil, nil
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: metrics.InstrumentTransport("namecom", http.DefaultTransport),
	}
	return registrar.New(cfg, registrar.WithHTTPClient(client))
}

func newGateway(cfg config.AIConfig, promptsDir string) (*ailink.Gateway, error) {
	var (
		prompts prompt.Registry
		err     error
	)
	if promptsDir != "" {
		prompts, err = prompt.RegistryWithOverrides(promptsDir)
	} else {
		prompts, err = prompt.DefaultRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	gw := ailink.NewGateway(cfg, prompts)
	gw.Recorder = metrics.Upstream{}
	return gw, nil
}
