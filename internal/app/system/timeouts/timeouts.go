// Package timeouts provides centralized timeout values for handler and
// worker operations.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Short: single-document reads and conditional updates
//   - Medium: feed queries with populated relations
//   - Long: creates that touch several collections
//   - Upload: object-storage transfers for one request
//   - Transcode: one video probe + recompress
//   - Sweep: one run of a background job
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing      = 2 * time.Second
	DefaultShort     = 5 * time.Second
	DefaultMedium    = 10 * time.Second
	DefaultLong      = 30 * time.Second
	DefaultUpload    = 2 * time.Minute
	DefaultTranscode = 3 * time.Minute
	DefaultSweep     = 30 * time.Second
)

// Config holds timeout values. Zero values are ignored by Configure.
type Config struct {
	Ping      time.Duration
	Short     time.Duration
	Medium    time.Duration
	Long      time.Duration
	Upload    time.Duration
	Transcode time.Duration
	Sweep     time.Duration
}

func defaults() Config {
	return Config{
		Ping:      DefaultPing,
		Short:     DefaultShort,
		Medium:    DefaultMedium,
		Long:      DefaultLong,
		Upload:    DefaultUpload,
		Transcode: DefaultTranscode,
		Sweep:     DefaultSweep,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

func Ping() time.Duration      { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration     { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration    { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration      { return get(func(c Config) time.Duration { return c.Long }) }
func Upload() time.Duration    { return get(func(c Config) time.Duration { return c.Upload }) }
func Transcode() time.Duration { return get(func(c Config) time.Duration { return c.Transcode }) }
func Sweep() time.Duration     { return get(func(c Config) time.Duration { return c.Sweep }) }

// Configure overrides timeouts. Zero values keep the current value.
// Call it during startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	cur = merge(cur, cfg)
}

func merge(base, over Config) Config {
	pick := func(b, o time.Duration) time.Duration {
		if o > 0 {
			return o
		}
		return b
	}
	return Config{
		Ping:      pick(base.Ping, over.Ping),
		Short:     pick(base.Short, over.Short),
		Medium:    pick(base.Medium, over.Medium),
		Long:      pick(base.Long, over.Long),
		Upload:    pick(base.Upload, over.Upload),
		Transcode: pick(base.Transcode, over.Transcode),
		Sweep:     pick(base.Sweep, over.Sweep),
	}
}

// Reset restores all defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG, TIMEOUT_UPLOAD, TIMEOUT_TRANSCODE and TIMEOUT_SWEEP
// (Go duration strings). Invalid or non-positive values are ignored.
// Returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		env string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cfg.Ping},
		{"TIMEOUT_SHORT", &cfg.Short},
		{"TIMEOUT_MEDIUM", &cfg.Medium},
		{"TIMEOUT_LONG", &cfg.Long},
		{"TIMEOUT_UPLOAD", &cfg.Upload},
		{"TIMEOUT_TRANSCODE", &cfg.Transcode},
		{"TIMEOUT_SWEEP", &cfg.Sweep},
	} {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "achievement asset upload")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
