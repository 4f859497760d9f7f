package keyrealm

import (
	"errors"
	"time"

	"github.com/keyrealm/keyrealm/password"
)

// Config is the full realm configuration tree. Obtain a baseline from the
// builder and override fields before Build; instances are treated as
// immutable afterwards.
type Config struct {
	Token     TokenConfig
	Password  password.Config
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// TokenConfig controls bearer token issuance and lookup.
type TokenConfig struct {
	// Bits is the entropy width of issued tokens. Token uniqueness is
	// probabilistic: wide enough tokens make collision checking
	// unnecessary.
	Bits int
	// CacheableLookups declares whether Authenticate results may be
	// memoized by upstream layers.
	CacheableLookups bool
}

// RateLimitConfig controls the optional login attempt limiter. Enabling it
// requires a Redis client on the builder.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxAttempts      int
	Cooldown         time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled bool
}

const minTokenBits = 128

// DefaultConfig returns the baseline configuration the builder starts from.
// Override fields on the returned value and pass it to
// [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Bits:             256,
			CacheableLookups: true,
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: true,
			MaxAttempts:      5,
			Cooldown:         time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func (c Config) validate() error {
	if c.Token.Bits < minTokenBits {
		return errors.New("token bits must be >= 128")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxAttempts <= 0 {
			return errors.New("rate limit max attempts must be positive")
		}
		if c.RateLimit.Cooldown <= 0 {
			return errors.New("rate limit cooldown must be positive")
		}
	}
	return nil
}
