package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/metrics"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/service"
)

const computeStages = 3

// Runner fetches both sources for a season, runs the allocation engine and
// hands the result to sinks. Stages run strictly in sequence.
type Runner struct {
	injuries    ingest.Source[model.InjuryRecord]
	performance ingest.Source[model.PerformanceStint]
	engine      *service.AllocationService
	metrics     *metrics.Manager
	now         func() time.Time
}

// NewRunner wires a runner. m may be nil.
func NewRunner(
	injuries ingest.Source[model.InjuryRecord],
	performance ingest.Source[model.PerformanceStint],
	engine *service.AllocationService,
	m *metrics.Manager,
) *Runner {
	if engine == nil {
		engine = service.NewAllocationService(nil)
	}
	return &Runner{
		injuries:    injuries,
		performance: performance,
		engine:      engine,
		metrics:     m,
		now:         time.Now,
	}
}

// Run computes wins lost for season, reporting progress via the Reporter if
// provided.
func (r *Runner) Run(ctx context.Context, season int, reporter Reporter) (*model.Result, error) {
	start := r.now()
	if reporter != nil {
		reporter.OnRunStart(season)
	}

	result, err := r.run(ctx, season, reporter)
	if err != nil {
		r.metrics.RecordRun(metrics.StatusError, r.now().Sub(start))
		if reporter != nil {
			reporter.OnRunError(err)
		}
		return nil, err
	}

	r.metrics.RecordRun(metrics.StatusSuccess, r.now().Sub(start))
	r.metrics.RecordResult(len(result.Teams), result.Skipped, len(result.Gaps))
	if reporter != nil {
		reporter.OnRunComplete(result)
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, season int, reporter Reporter) (*model.Result, error) {
	stage(reporter, StageInjuries, 0)
	injuries, err := fetch(ctx, r, r.injuries, season, reporter)
	if err != nil {
		return nil, err
	}

	stage(reporter, StagePerformance, 1)
	stints, err := fetch(ctx, r, r.performance, season, reporter)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage(reporter, StageAllocate, 2)
	result, err := r.engine.Compute(injuries, stints)
	if err != nil {
		return nil, fmt.Errorf("allocate season %d: %w", season, err)
	}
	result.Season = season
	result.ComputedAt = r.now().UTC()

	if reporter != nil {
		reporter.OnProgress(fmt.Sprintf("✓ Allocated %d stints across %d teams", len(result.Stints), len(result.Teams)), computeStages, computeStages)
	}
	return result, nil
}

// fetch runs one source, timing it for metrics.
func fetch[T any](ctx context.Context, r *Runner, source ingest.Source[T], season int, reporter Reporter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := r.now()
	records, err := source.FetchSeason(ctx, season)
	if err != nil {
		r.metrics.RecordFetch(source.Name(), metrics.StatusError, 0, r.now().Sub(start))
		return nil, fmt.Errorf("%s season %d: %w", source.Name(), season, err)
	}
	r.metrics.RecordFetch(source.Name(), metrics.StatusSuccess, len(records), r.now().Sub(start))

	if reporter != nil {
		reporter.OnSourceFetched(source.Name(), len(records))
	}
	return records, nil
}

// Emit writes result to each sink in order and stops at the first failure.
// Sinks already written are not rolled back.
func (r *Runner) Emit(ctx context.Context, result *model.Result, reporter Reporter, sinks ...Sink) error {
	total := len(sinks)
	for idx, sink := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if reporter != nil {
			reporter.OnStageStart(StageEmit, idx, total)
		}

		if err := sink.Write(ctx, result); err != nil {
			r.metrics.RecordSinkError(sink.Name())
			err = fmt.Errorf("write %s: %w", sink.Name(), err)
			if reporter != nil {
				reporter.OnRunError(err)
			}
			return err
		}

		if reporter != nil {
			reporter.OnProgress(fmt.Sprintf("✓ Wrote %s", sink.Name()), idx+1, total)
		}
	}
	return nil
}

func stage(reporter Reporter, s Stage, index int) {
	if reporter != nil {
		reporter.OnStageStart(s, index, computeStages)
	}
}
