package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openpulse/pulse/internal/core"
)

// DecisionsRepo is the append-only dispatch decision log.
type DecisionsRepo struct {
	db *sql.DB
}

func NewDecisionsRepo(db *sql.DB) *DecisionsRepo {
	return &DecisionsRepo{db: db}
}

func (r *DecisionsRepo) Append(ctx context.Context, rec core.DecisionRecord) error {
	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO decisions (ts, input_length, word_count, mode, complexity, latency_ms, confidence, tools_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		ts,
		rec.InputLength,
		rec.WordCount,
		string(rec.SelectedMode),
		rec.ComplexityScore,
		rec.ExecutionTimeMs,
		rec.Confidence,
		rec.ToolsUsedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to append decision: %w", err)
	}

	return nil
}

func (r *DecisionsRepo) Stats(ctx context.Context) (core.DecisionStats, error) {
	stats := core.DecisionStats{
		ByMode: make(map[core.ReasoningMode]core.ModeStats),
	}

	query := `
		SELECT mode, COUNT(*), AVG(latency_ms), AVG(confidence)
		FROM decisions
		GROUP BY mode`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return core.DecisionStats{}, fmt.Errorf("failed to query decision stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mode sql.NullString
			ms   core.ModeStats
		)
		if err := rows.Scan(&mode, &ms.Count, &ms.AvgTimeMs, &ms.AvgConfidence); err != nil {
			return core.DecisionStats{}, fmt.Errorf("failed to scan stats row: %w", err)
		}

		stats.ByMode[core.ReasoningMode(mode.String)] = ms
		stats.TotalRequests += ms.Count
	}

	if err := rows.Err(); err != nil {
		return core.DecisionStats{}, fmt.Errorf("failed to iterate stats rows: %w", err)
	}

	return stats, nil
}
