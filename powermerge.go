// Package powermerge assembles raw per-source plant tables into one merged,
// deduplicated inventory. The pipeline standardizes each source, aggregates
// units into plants, links records across sources, merges each match group
// by source reliability and optionally fills remaining gaps with estimates.
package powermerge

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/emberdata/powermerge/internal/cache"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/provenance"
)

// Pipeline is the configured merge engine. Create one with New and reuse it
// across runs; it holds no per-run state.
type Pipeline struct {
	cfg         *config.Config
	store       cache.Store
	logger      *zerolog.Logger
	prov        provenance.Tracker
	concurrency int
}

// New creates a Pipeline. Without options it runs on the default
// configuration, which declares no sources; most callers pass WithConfig.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:    config.Default(),
		store:  cache.Nop{},
		logger: logging.Default(),
		prov:   provenance.NewTracker(false),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if err := p.cfg.Finalize(); err != nil {
		return nil, err
	}
	if len(p.cfg.Sources) == 0 {
		return nil, errors.NewConfigError("sources", "no sources declared", nil)
	}
	if p.concurrency <= 0 {
		p.concurrency = p.cfg.Concurrency
	}
	if p.concurrency <= 0 {
		p.concurrency = runtime.NumCPU()
	}
	return p, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}
