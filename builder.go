package keyrealm

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	internalaudit "github.com/keyrealm/keyrealm/internal/audit"
	internalmetrics "github.com/keyrealm/keyrealm/internal/metrics"
	"github.com/keyrealm/keyrealm/internal/rate"
	"github.com/keyrealm/keyrealm/password"
	"github.com/keyrealm/keyrealm/random"
)

// Builder assembles a [Realm]. Configure, then call Build exactly once.
type Builder struct {
	config    Config
	logger    *zap.Logger
	redis     redis.UniversalClient
	auditSink AuditSink
	generator *random.Generator

	built bool
}

// New creates a [Builder] with default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRedis sets the Redis client backing the login rate limiter. Required
// when Config.RateLimit.Enabled is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithGenerator replaces the token byte source. Intended for tests needing
// deterministic tokens; production realms use the default CSPRNG-seeded
// generator.
func (b *Builder) WithGenerator(g *random.Generator) *Builder {
	b.generator = g
	return b
}

// Build validates the configuration and constructs the [Realm]. Validation
// failures are startup faults: the host should treat them as fatal rather
// than serve with a partially configured realm.
func (b *Builder) Build() (*Realm, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := b.config.validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewKeyed(b.config.Password)
	if err != nil {
		return nil, err
	}

	gen := b.generator
	if gen == nil {
		gen, err = random.NewGenerator()
		if err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if b.config.RateLimit.Enabled {
		if b.redis == nil {
			return nil, errors.New("rate limiting enabled without a redis client")
		}
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: b.config.RateLimit.EnableIPThrottle,
			MaxAttempts:      b.config.RateLimit.MaxAttempts,
			Cooldown:         b.config.RateLimit.Cooldown,
		})
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Realm{
		config:  b.config,
		logger:  logger,
		gen:     gen,
		hasher:  hasher,
		limiter: limiter,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: b.config.Metrics.Enabled,
		}),
		users:  make(map[string]*userRecord),
		apps:   make(map[string]Application),
		tokens: make(map[string]*Principal),
	}

	b.built = true
	return r, nil
}
