package pipeline

import (
	"context"

	"github.com/fortuna/sidelined/internal/model"
)

// Stage names one step of a run.
type Stage string

const (
	StageInjuries    Stage = "injuries"
	StagePerformance Stage = "performance"
	StageAllocate    Stage = "allocate"
	StageEmit        Stage = "emit"
)

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(season int)
	OnStageStart(stage Stage, index int, total int)
	OnSourceFetched(source string, records int)
	OnProgress(message string, current int, total int)
	OnRunComplete(result *model.Result)
	OnRunError(err error)
}

// Sink receives a finished result: the console, a CSV file, a chart, a
// database table or a stream.
type Sink interface {
	Name() string
	Write(ctx context.Context, result *model.Result) error
}
