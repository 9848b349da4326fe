// internal/service/analysis/analyzer.go

// Package analysis drives the full pipeline for one run: parallel source
// collection, trust scoring, and report assembly. It also keeps an
// in-memory registry of runs for serve mode.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/adapter/events"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/report"
	"brandtrust/internal/service/collect"
	reportsvc "brandtrust/internal/service/report"
	"brandtrust/internal/service/scoring"
)

// Archive stores completed reports. Optional; a nil archive disables it.
type Archive interface {
	SaveReport(ctx context.Context, r report.Report) error
}

// State is the lifecycle phase of one run
type State string

const (
	StateCollecting State = "collecting"
	StateScoring    State = "scoring"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Run is one tracked analysis run
type Run struct {
	ID         string         `json:"id"`
	Query      brand.Query    `json:"query"`
	State      State          `json:"state"`
	Report     *report.Report `json:"report,omitempty"`
	ReportPath string         `json:"report_path,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// Analyzer wires the pipeline stages together
type Analyzer struct {
	orchestrator *collect.Orchestrator
	scorer       *scoring.Scorer
	builder      *reportsvc.Builder
	events       *events.Publisher
	archive      Archive

	mu   sync.RWMutex
	runs map[string]*Run
}

// New creates an analyzer. events and archive may be nil.
func New(orchestrator *collect.Orchestrator, scorer *scoring.Scorer, builder *reportsvc.Builder, publisher *events.Publisher, archive Archive) *Analyzer {
	return &Analyzer{
		orchestrator: orchestrator,
		scorer:       scorer,
		builder:      builder,
		events:       publisher,
		archive:      archive,
		runs:         make(map[string]*Run),
	}
}

// Analyze runs the full pipeline synchronously and returns the report and
// the path it was written to
func (a *Analyzer) Analyze(ctx context.Context, q brand.Query) (report.Report, string, error) {
	if err := q.Validate(); err != nil {
		return report.Report{}, "", err
	}

	run := a.register(q)
	r, path, err := a.execute(ctx, run)
	if err != nil {
		return report.Report{}, "", err
	}
	return *r, path, nil
}

// Start launches a run in the background and returns its ID. Used by serve
// mode; the caller polls GetRun or subscribes to the event stream.
func (a *Analyzer) Start(q brand.Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	run := a.register(q)
	go func() {
		// Detached from the request context: a run outlives the HTTP
		// request that started it
		if _, _, err := a.execute(context.Background(), run); err != nil {
			log.Error().Err(err).Str("run_id", run.ID).Msg("background run failed")
		}
	}()
	return run.ID, nil
}

// GetRun returns a snapshot of a tracked run
func (a *Analyzer) GetRun(id string) (Run, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	run, ok := a.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// ListRuns returns snapshots of all tracked runs
func (a *Analyzer) ListRuns() []Run {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Run, 0, len(a.runs))
	for _, run := range a.runs {
		out = append(out, *run)
	}
	return out
}

func (a *Analyzer) register(q brand.Query) *Run {
	run := &Run{
		ID:        uuid.New().String(),
		Query:     q,
		State:     StateCollecting,
		StartedAt: time.Now().UTC(),
	}

	a.mu.Lock()
	a.runs[run.ID] = run
	a.mu.Unlock()
	return run
}

func (a *Analyzer) execute(ctx context.Context, run *Run) (*report.Report, string, error) {
	log.Info().
		Str("run_id", run.ID).
		Str("brand", run.Query.Brand).
		Msg("analysis started")
	a.events.RunStarted(run.ID, run.Query)

	agg := a.orchestrator.Run(ctx, run.Query, func(result brand.SourceResult) {
		a.events.SourceFinished(run.ID, result)
	})

	// A run where every source failed still scores and reports: the
	// components sit at the midpoint and the failures land in the warnings
	a.setState(run, StateScoring)
	score, warnings := a.scorer.Score(ctx, run.Query, agg)

	rep := a.builder.Build(run.ID, run.Query, agg, score, warnings)
	path, err := a.builder.Write(rep)
	if err != nil {
		a.fail(run, err)
		return nil, "", err
	}

	if a.archive != nil {
		if err := a.archive.SaveReport(ctx, rep); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID).Msg("report archive failed")
		}
	}

	a.complete(run, &rep, path)
	a.events.RunCompleted(run.ID, run.Query.Brand, score.FinalScore, score.Interpretation)

	log.Info().
		Str("run_id", run.ID).
		Float64("final_score", score.FinalScore).
		Str("report", path).
		Msg("analysis completed")
	return &rep, path, nil
}

func (a *Analyzer) setState(run *Run, state State) {
	a.mu.Lock()
	run.State = state
	a.mu.Unlock()
}

func (a *Analyzer) complete(run *Run, rep *report.Report, path string) {
	now := time.Now().UTC()
	a.mu.Lock()
	run.State = StateCompleted
	run.Report = rep
	run.ReportPath = path
	run.FinishedAt = &now
	a.mu.Unlock()
}

func (a *Analyzer) fail(run *Run, err error) {
	now := time.Now().UTC()
	a.mu.Lock()
	run.State = StateFailed
	run.Error = err.Error()
	run.FinishedAt = &now
	a.mu.Unlock()

	a.events.RunFailed(run.ID, run.Query.Brand, err)
	log.Error().Err(err).Str("run_id", run.ID).Msg("analysis failed")
}
