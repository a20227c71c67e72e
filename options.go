package powermerge

import (
	"github.com/rs/zerolog"

	"github.com/emberdata/powermerge/internal/cache"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/provenance"
)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig sets the pipeline configuration. The config is finalized by
// New; callers need not call Finalize themselves.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) error {
		if cfg == nil {
			return errors.NewConfigError("config", "nil config", nil)
		}
		p.cfg = cfg
		return nil
	}
}

// WithConfigFile loads the pipeline configuration from a YAML file.
func WithConfigFile(path string) Option {
	return func(p *Pipeline) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		p.cfg = cfg
		return nil
	}
}

// WithCache sets the snapshot store consulted by the standardizer.
func WithCache(store cache.Store) Option {
	return func(p *Pipeline) error {
		if store == nil {
			store = cache.Nop{}
		}
		p.store = store
		return nil
	}
}

// WithCacheDir enables filesystem snapshot caching under dir.
func WithCacheDir(dir string) Option {
	return func(p *Pipeline) error {
		store, err := cache.NewDir(dir)
		if err != nil {
			return err
		}
		p.store = store
		return nil
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithProvenance enables field-level provenance tracking.
func WithProvenance() Option {
	return func(p *Pipeline) error {
		p.prov = provenance.NewTracker(true)
		return nil
	}
}

// WithConcurrency bounds the per-country worker pool, overriding the
// configured value.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return errors.NewConfigError("concurrency", "must be at least 1", nil)
		}
		p.concurrency = n
		return nil
	}
}
