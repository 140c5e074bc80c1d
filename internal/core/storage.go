package core

import "context"

// SessionCheckpointer persists the open-session registry. Each open session
// is one record, rewritten wholesale on every mutation, so a crash loses at
// most the single most recent uncommitted mutation.
type SessionCheckpointer interface {
	Save(ctx context.Context, s *Session) error
	Remove(ctx context.Context, sessionID string) error
	LoadAll(ctx context.Context) (map[string]*Session, error)
}

// DecisionRecord is one dispatch decision, logged for offline analysis.
type DecisionRecord struct {
	Timestamp       string        `json:"timestamp"`
	InputLength     int           `json:"user_input_length"`
	WordCount       int           `json:"word_count"`
	SelectedMode    ReasoningMode `json:"selected_mode"`
	ComplexityScore int           `json:"complexity_score"`
	ExecutionTimeMs int64         `json:"execution_time_ms"`
	Confidence      float64       `json:"confidence"`
	ToolsUsedCount  int           `json:"tools_used_count"`
}

// ModeStats aggregates decisions for one reasoning mode.
type ModeStats struct {
	Count         int
	AvgTimeMs     float64
	AvgConfidence float64
}

// DecisionStats summarizes the full decision log.
type DecisionStats struct {
	TotalRequests int
	ByMode        map[ReasoningMode]ModeStats
}

// DecisionLog is the append-only dispatch-decision sink. Appends are
// best-effort; failures are swallowed by the caller.
type DecisionLog interface {
	Append(ctx context.Context, rec DecisionRecord) error
	Stats(ctx context.Context) (DecisionStats, error)
}
