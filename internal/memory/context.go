package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/log"
	"github.com/openpulse/pulse/pkg/textnorm"
)

// FirstConversationSentinel is returned by Build when no prior history
// exists for the user.
const FirstConversationSentinel = "# Primeira conversa com este usuário.\n"

const (
	recentMessagesPerSession = 6
	recentMessageMaxChars    = 250
	solutionMaxChars         = 200
	maxFactsPerCategory      = 3
	maxSolutions             = 5
	recentFetchLimit         = 50
)

var categoryLabels = map[core.FactCategory]string{
	core.CategoryTechStack:  "🛠️ Stack Técnica",
	core.CategoryProject:    "📂 Projetos",
	core.CategoryPreference: "⭐ Preferências",
	core.CategoryLearning:   "📚 Estudando",
	core.CategoryProblem:    "⚠️ Problemas Comuns",
	core.CategorySolution:   "✅ Soluções Favoritas",
}

var allCategories = []core.FactCategory{
	core.CategoryTechStack,
	core.CategoryProject,
	core.CategoryPreference,
	core.CategoryLearning,
	core.CategoryProblem,
	core.CategorySolution,
}

// BuildOptions bound the context bundle size.
type BuildOptions struct {
	LookbackDays int
	MaxSessions  int
	MaxFacts     int
}

// SimilarHit is one semantic-search result above the relevance threshold.
type SimilarHit struct {
	Text       string    `json:"text"`
	Role       core.Role `json:"role"`
	Timestamp  time.Time `json:"timestamp"`
	Topics     []string  `json:"topics,omitempty"`
	Similarity float32   `json:"similarity"`
}

// Assembler builds the prompt context bundle from the long-term tiers. It
// is read-only; given unchanged store state the output is deterministic.
type Assembler struct {
	store *Store
	now   func() time.Time
}

func NewAssembler(store *Store) *Assembler {
	return &Assembler{store: store, now: time.Now}
}

// Build renders up to three sections, each omitted when empty: recent
// conversations within the lookback window, categorized user facts, and
// prior solutions. With no history at all it returns the fixed sentinel.
// Store failures degrade to omitted sections.
func (a *Assembler) Build(ctx context.Context, userID string, opts BuildOptions) string {
	var parts []string

	if recent := a.recentConversations(ctx, userID, opts.LookbackDays, opts.MaxSessions); recent != "" {
		parts = append(parts, "# CONVERSAS RECENTES", recent)
	}
	if facts := a.userFacts(ctx, userID, opts.MaxFacts); facts != "" {
		parts = append(parts, "\n# INFORMAÇÕES SOBRE O USUÁRIO", facts)
	}
	if solutions := a.solutions(ctx, userID); solutions != "" {
		parts = append(parts, "\n# SOLUÇÕES QUE FUNCIONARAM ANTES", solutions)
	}

	if len(parts) == 0 {
		return FirstConversationSentinel
	}

	return strings.Join(parts, "\n")
}

type contextMessage struct {
	role      core.Role
	text      string
	timestamp time.Time
}

func (a *Assembler) recentConversations(ctx context.Context, userID string, lookbackDays, maxSessions int) string {
	hits, err := a.store.Query(ctx, CollectionConversations, "", map[string]string{"user_id": userID}, recentFetchLimit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to fetch recent conversations")
		return ""
	}

	// The backend filters on exact metadata matches only, so the lookback
	// window is applied here.
	cutoff := a.now().AddDate(0, 0, -lookbackDays)

	type sessionData struct {
		messages []contextMessage
		latest   time.Time
	}
	sessions := make(map[string]*sessionData)

	for _, h := range hits {
		ts, err := time.Parse(time.RFC3339, h.Metadata["timestamp"])
		if err != nil || ts.Before(cutoff) {
			continue
		}

		sid := h.Metadata["session_id"]
		data, ok := sessions[sid]
		if !ok {
			data = &sessionData{}
			sessions[sid] = data
		}
		data.messages = append(data.messages, contextMessage{
			role:      core.Role(h.Metadata["role"]),
			text:      h.Text,
			timestamp: ts,
		})
		if ts.After(data.latest) {
			data.latest = ts
		}
	}
	if len(sessions) == 0 {
		return ""
	}

	ordered := make([]*sessionData, 0, len(sessions))
	for _, data := range sessions {
		sort.Slice(data.messages, func(i, j int) bool {
			return data.messages[i].timestamp.Before(data.messages[j].timestamp)
		})
		ordered = append(ordered, data)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].latest.After(ordered[j].latest)
	})
	if len(ordered) > maxSessions {
		ordered = ordered[:maxSessions]
	}

	var b strings.Builder
	for _, data := range ordered {
		fmt.Fprintf(&b, "\n## Sessão de %s\n", data.latest.Format("02/01/2006 às 15:04"))

		messages := data.messages
		if len(messages) > recentMessagesPerSession {
			messages = messages[len(messages)-recentMessagesPerSession:]
		}
		for _, msg := range messages {
			label := "Você"
			if msg.role == core.RoleUser {
				label = "Usuário"
			}
			fmt.Fprintf(&b, "**%s:** %s\n", label, textnorm.Truncate(msg.text, recentMessageMaxChars))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (a *Assembler) userFacts(ctx context.Context, userID string, maxFacts int) string {
	hits, err := a.store.Query(ctx, CollectionFacts, "", map[string]string{"user_id": userID}, maxFacts)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to fetch user facts")
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	byCategory := make(map[core.FactCategory][]string)
	for _, h := range hits {
		category := core.FactCategory(h.Metadata["category"])
		byCategory[category] = append(byCategory[category], h.Text)
	}

	var b strings.Builder
	for _, category := range allCategories {
		facts := byCategory[category]
		if len(facts) == 0 {
			continue
		}
		if len(facts) > maxFactsPerCategory {
			facts = facts[:maxFactsPerCategory]
		}
		sort.Strings(facts)

		fmt.Fprintf(&b, "\n**%s:**\n", categoryLabels[category])
		for _, fact := range facts {
			fmt.Fprintf(&b, "  - %s\n", fact)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (a *Assembler) solutions(ctx context.Context, userID string) string {
	hits, err := a.store.Query(ctx, CollectionSolutions, "", map[string]string{"user_id": userID}, maxSolutions)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to fetch solutions")
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range hits {
		topics := splitTopics(h.Metadata["topics"])
		topicsStr := "geral"
		if len(topics) > 0 {
			if len(topics) > 3 {
				topics = topics[:3]
			}
			topicsStr = strings.Join(topics, ", ")
		}
		fmt.Fprintf(&b, "\n%d. **[%s]** %s", i+1, topicsStr, textnorm.Truncate(h.Text, solutionMaxChars))
	}

	return b.String()
}

// SearchSimilar is semantic recall over past conversations: hits below the
// 0.5 similarity threshold are dropped.
func (a *Assembler) SearchSimilar(ctx context.Context, query, userID string, limit int) ([]SimilarHit, error) {
	hits, err := a.store.Query(ctx, CollectionConversations, query, map[string]string{"user_id": userID}, limit)
	if err != nil {
		return nil, err
	}

	var similar []SimilarHit
	for _, h := range hits {
		if h.Similarity <= 0.5 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, h.Metadata["timestamp"])
		similar = append(similar, SimilarHit{
			Text:       h.Text,
			Role:       core.Role(h.Metadata["role"]),
			Timestamp:  ts,
			Topics:     splitTopics(h.Metadata["topics"]),
			Similarity: h.Similarity,
		})
	}

	return similar, nil
}

// ConversationExport is the full dump of a user's stored conversations.
type ConversationExport struct {
	UserID        string          `json:"user_id"`
	ExportDate    time.Time       `json:"export_date"`
	TotalSessions int             `json:"total_sessions"`
	TotalMessages int             `json:"total_messages"`
	Sessions      []ExportSession `json:"sessions"`
}

type ExportSession struct {
	SessionID string          `json:"session_id"`
	Messages  []ExportMessage `json:"messages"`
}

type ExportMessage struct {
	Role      core.Role `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Topics    []string  `json:"topics,omitempty"`
}

// Export collects every stored conversation turn of a user, grouped by
// session with messages in chronological order.
func (a *Assembler) Export(ctx context.Context, userID string) (*ConversationExport, error) {
	limit := a.store.Count(CollectionConversations)
	hits, err := a.store.Query(ctx, CollectionConversations, "", map[string]string{"user_id": userID}, limit)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*ExportSession)
	for _, h := range hits {
		sid := h.Metadata["session_id"]
		session, ok := grouped[sid]
		if !ok {
			session = &ExportSession{SessionID: sid}
			grouped[sid] = session
		}

		ts, _ := time.Parse(time.RFC3339, h.Metadata["timestamp"])
		session.Messages = append(session.Messages, ExportMessage{
			Role:      core.Role(h.Metadata["role"]),
			Text:      h.Text,
			Timestamp: ts,
			Topics:    splitTopics(h.Metadata["topics"]),
		})
	}

	export := &ConversationExport{
		UserID:        userID,
		ExportDate:    a.now(),
		TotalMessages: len(hits),
		TotalSessions: len(grouped),
	}
	for _, session := range grouped {
		sort.Slice(session.Messages, func(i, j int) bool {
			return session.Messages[i].Timestamp.Before(session.Messages[j].Timestamp)
		})
		export.Sessions = append(export.Sessions, *session)
	}
	sort.Slice(export.Sessions, func(i, j int) bool {
		return export.Sessions[i].SessionID < export.Sessions[j].SessionID
	})

	return export, nil
}

func splitTopics(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
