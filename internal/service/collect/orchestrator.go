// internal/service/collect/orchestrator.go

// Package collect fans the analysis query out to every source collector in
// parallel and gathers the results into a single aggregate.
package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
)

// Orchestrator runs the source collectors concurrently with a per-source
// deadline. A slow source never blocks the run: when its deadline passes it
// is recorded as failed and its late result is discarded.
type Orchestrator struct {
	cfg        config.CollectConfig
	collectors []brand.Collector
}

// New creates an orchestrator over the given collectors
func New(cfg config.CollectConfig, collectors ...brand.Collector) *Orchestrator {
	return &Orchestrator{cfg: cfg, collectors: collectors}
}

// Run collects from every source in parallel and returns the aggregate.
// The aggregate always has one entry per known source. The progress
// callback, when non-nil, is called once per source as its result lands;
// calls are serialized.
func (o *Orchestrator) Run(ctx context.Context, q brand.Query, progress func(brand.SourceResult)) brand.Aggregate {
	started := time.Now()

	results := make(chan brand.SourceResult, len(o.collectors))
	var wg sync.WaitGroup

	for _, collector := range o.collectors {
		wg.Add(1)
		go func(c brand.Collector) {
			defer wg.Done()
			results <- o.collectOne(ctx, c, q)
		}(collector)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	agg := brand.Aggregate{
		Results:     make(map[string]brand.SourceResult, len(brand.Sources())),
		CollectedAt: started,
	}
	for result := range results {
		agg.Results[result.Source] = result
		if progress != nil {
			progress(result)
		}
		log.Info().
			Str("source", result.Source).
			Str("status", string(result.Status)).
			Int("findings", len(result.Findings)).
			Msg("source collection finished")
	}

	// The aggregate carries exactly one entry per known source, even when
	// no collector covers it
	for _, source := range brand.Sources() {
		if _, ok := agg.Results[source]; !ok {
			agg.Results[source] = brand.Failed(source, fmt.Errorf("no collector registered"))
		}
	}

	log.Info().
		Dur("elapsed", time.Since(started)).
		Int("sources", len(agg.Results)).
		Msg("collection complete")
	return agg
}

// collectOne runs a single collector under its deadline. The collector runs
// in its own goroutine so a source that ignores cancellation still cannot
// stall the run past the deadline.
func (o *Orchestrator) collectOne(ctx context.Context, c brand.Collector, q brand.Query) brand.SourceResult {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.SourceTimeout)
	defer cancel()

	done := make(chan brand.SourceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- brand.Failed(c.Name(), fmt.Errorf("collector panicked: %v", r))
			}
		}()
		done <- c.Collect(ctx, q)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		log.Warn().
			Str("source", c.Name()).
			Dur("timeout", o.cfg.SourceTimeout).
			Msg("source collection abandoned")
		return brand.Failed(c.Name(), fmt.Errorf("collection timed out after %s", o.cfg.SourceTimeout))
	}
}
