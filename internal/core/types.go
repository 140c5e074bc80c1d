package core

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FactCategory classifies durable facts extracted from user turns.
type FactCategory string

const (
	CategoryTechStack  FactCategory = "tech_stack"
	CategoryProject    FactCategory = "project"
	CategoryPreference FactCategory = "preference"
	CategoryLearning   FactCategory = "learning"
	CategoryProblem    FactCategory = "problem"
	CategorySolution   FactCategory = "solution"
)

// ReasoningMode selects the generation path for a request.
type ReasoningMode string

const (
	ModeFast ReasoningMode = "voice_fast"
	ModeDeep ReasoningMode = "reasoning_deep"
	// ModeHybrid is a declared mode that the current selection heuristic
	// never produces.
	ModeHybrid ReasoningMode = "hybrid"
)

// TurnMeta carries per-turn annotations. Known fields are enumerated;
// anything else goes through Extra.
type TurnMeta struct {
	Mode    string            `json:"mode,omitempty"`
	Preview string            `json:"preview,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Turn is one role-tagged message within a session. Immutable once created.
type Turn struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Role          Role      `json:"role"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	Meta          TurnMeta  `json:"meta"`
	Topics        []string  `json:"topics,omitempty"`
	ReasoningUsed bool      `json:"reasoning_used"`
}

// Session is an explicitly opened/closed scope of working memory for one
// conversation. Mutated only by the session store.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time,omitempty"`
	Turns          []Turn    `json:"turns"`
	Topics         []string  `json:"topics,omitempty"`
	TotalTurns     int       `json:"total_turns"`
	ReasoningCount int       `json:"reasoning_count"`
}

// Fact is a durable, categorized inference persisted from user text.
// Facts are accumulated as-is, never merged or deduplicated across turns.
type Fact struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Category       FactCategory `json:"category"`
	Content        string       `json:"content"`
	Confidence     float64      `json:"confidence"`
	FirstMentioned time.Time    `json:"first_mentioned"`
	LastMentioned  time.Time    `json:"last_mentioned"`
	MentionCount   int          `json:"mention_count"`
	Topics         []string     `json:"topics,omitempty"`
}

// Solution is an assistant turn classified as a reusable solution.
type Solution struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Topics    []string  `json:"topics,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolInvocation records one provider-side tool call made during deep
// reasoning (code execution, for now).
type ToolInvocation struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
	Result   string `json:"result,omitempty"`
}

// ReasoningResult is what the dispatcher hands back to the owning agent.
type ReasoningResult struct {
	Mode       ReasoningMode    `json:"mode"`
	Text       string           `json:"text"`
	Thinking   string           `json:"thinking,omitempty"`
	ToolsUsed  []ToolInvocation `json:"tools_used,omitempty"`
	Confidence float64          `json:"confidence"`
	Latency    time.Duration    `json:"latency"`
}

// Source describes one external snippet used for freshness verification.
type Source struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// RealtimeContext is the outcome of a freshness lookup. An empty context
// is valid: it means the query is time-sensitive but nothing could be
// verified, and the answer must carry a "not verified" disclosure.
type RealtimeContext struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Verified reports whether the lookup produced at least one usable source.
func (rc RealtimeContext) Verified() bool {
	return len(rc.Sources) > 0
}
