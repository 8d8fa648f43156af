package pipeline

import (
	"log"

	"github.com/fortuna/sidelined/internal/model"
)

// LogReporter writes run progress to a logger.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter creates a reporter; a nil logger selects a "[pipeline]" one.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) OnRunStart(season int) {
	r.Logger.Printf("Starting run for %s season", model.SeasonLabel(season))
}

func (r *LogReporter) OnStageStart(stage Stage, index int, total int) {
	r.Logger.Printf("[%d/%d] %s", index+1, total, stage)
}

func (r *LogReporter) OnSourceFetched(source string, records int) {
	r.Logger.Printf("✓ %s: %d records", source, records)
}

func (r *LogReporter) OnProgress(message string, current int, total int) {
	if total > 0 {
		r.Logger.Printf("[%d/%d] %s", current, total, message)
		return
	}
	r.Logger.Println(message)
}

func (r *LogReporter) OnRunComplete(result *model.Result) {
	r.Logger.Printf("✓ Run complete: %d teams, %d join gaps, %d skipped", len(result.Teams), len(result.Gaps), result.Skipped)
}

func (r *LogReporter) OnRunError(err error) {
	r.Logger.Printf("❌ Run failed: %v", err)
}
