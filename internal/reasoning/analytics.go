package reasoning

import (
	"context"
	"strings"
	"time"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/log"
)

// Analytics records dispatch decisions for offline analysis. Appends are
// best-effort: a failing sink never affects the request path.
type Analytics struct {
	sink core.DecisionLog
}

func NewAnalytics(sink core.DecisionLog) *Analytics {
	return &Analytics{sink: sink}
}

func (a *Analytics) LogDecision(ctx context.Context, userInput string, mode core.ReasoningMode, complexityScore int, result core.ReasoningResult) {
	rec := core.DecisionRecord{
		Timestamp:       time.Now().Format(time.RFC3339),
		InputLength:     len(userInput),
		WordCount:       len(strings.Fields(userInput)),
		SelectedMode:    mode,
		ComplexityScore: complexityScore,
		ExecutionTimeMs: result.Latency.Milliseconds(),
		Confidence:      result.Confidence,
		ToolsUsedCount:  len(result.ToolsUsed),
	}

	if err := a.sink.Append(ctx, rec); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("failed to log dispatch decision")
	}
}

func (a *Analytics) Stats(ctx context.Context) (core.DecisionStats, error) {
	return a.sink.Stats(ctx)
}
