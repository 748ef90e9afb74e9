package probe

import (
	"context"
	"log"
	"time"

	"github.com/akl7777777/whoami-probe/internal/config"
	"github.com/akl7777777/whoami-probe/internal/model"
	"github.com/redis/go-redis/v9"
)

// CounterKey is the key incremented by every cache probe.
const CounterKey = "hits"

// CacheProbe increments a counter in Redis to prove the store is reachable
// and writable. The client pool is shared by all requests.
type CacheProbe struct {
	host    string
	port    string
	client  redis.UniversalClient
	timeout time.Duration
}

// NewCacheProbe returns nil when no cache host is configured.
func NewCacheProbe(cfg config.CacheConfig, timeout time.Duration) *CacheProbe {
	if !cfg.Enabled() {
		log.Printf("[cache] CACHE_HOST not set, cache probe disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		MaxRetries:   -1,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	log.Printf("[cache] Probing %s", cfg.Addr())
	return NewCacheProbeWithClient(cfg.Host, cfg.Port, client, timeout)
}

// NewCacheProbeWithClient wraps an existing client.
func NewCacheProbeWithClient(host, port string, client redis.UniversalClient, timeout time.Duration) *CacheProbe {
	return &CacheProbe{
		host:    host,
		port:    port,
		client:  client,
		timeout: timeout,
	}
}

// Probe never returns an error; failures are reported in the result.
func (p *CacheProbe) Probe(ctx context.Context) *model.ProbeResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	n, err := p.client.Incr(ctx, CounterKey).Result()
	if err != nil {
		log.Printf("[cache] INCR %s on %s:%s failed: %v", CounterKey, p.host, p.port, err)
		return model.ProbeFailure(p.host, p.port, err)
	}
	return model.ProbeSuccess(p.host, p.port, n)
}

// Close releases the client pool.
func (p *CacheProbe) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
