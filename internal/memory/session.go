package memory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/log"
	"github.com/openpulse/pulse/pkg/retry"
)

// SessionStore is the working-memory tier: an in-process registry of open
// sessions, checkpointed to durable storage on every mutation and mirrored
// into the vector store for recall.
//
// The registry map is mutex-guarded so distinct sessions can progress from
// different goroutines. Serializing calls within one session remains the
// caller's contract.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*core.Session
	checkpoint core.SessionCheckpointer
	vectors    *Store
	retrier    *retry.Retrier
	now        func() time.Time
}

func NewSessionStore(ctx context.Context, checkpoint core.SessionCheckpointer, vectors *Store) (*SessionStore, error) {
	sessions, err := checkpoint.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		log.FromCtx(ctx).Info().Int("count", len(sessions)).Msg("recovered open sessions")
	}

	return &SessionStore{
		sessions:   sessions,
		checkpoint: checkpoint,
		vectors:    vectors,
		retrier:    retry.NewRetrier(retry.NewSingleRetryConfig()),
		now:        time.Now,
	}, nil
}

// CreateSession opens a new session scope. Checkpoint failures are logged
// and swallowed; the in-process session is still usable.
func (s *SessionStore) CreateSession(ctx context.Context, userID string) string {
	session := &core.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	snapshot := *session
	s.mu.Unlock()

	if err := s.checkpoint.Save(ctx, &snapshot); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to checkpoint new session")
	}

	log.FromCtx(ctx).Info().
		Str("session_id", shortID(session.ID)).
		Str("user_id", userID).
		Msg("session created")

	return session.ID
}

// AddTurn appends one turn to an open session: topics are extracted, the
// turn is mirrored into the conversations collection, user turns may yield
// facts and assistant turns may yield solutions, and the registry is
// re-checkpointed. Vector-store failures degrade to working memory only.
//
// The lock covers only the registry mutation; vector persistence and the
// checkpoint run outside it, so a slow embedding backend never stalls other
// sessions. The checkpoint writes a snapshot taken under the lock.
func (s *SessionStore) AddTurn(ctx context.Context, sessionID string, role core.Role, text string, meta core.TurnMeta, reasoningUsed bool) (string, error) {
	topics := ExtractTopics(text)

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return "", &core.SessionNotFoundError{SessionID: sessionID}
	}

	turn := core.Turn{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		UserID:        session.UserID,
		Role:          role,
		Text:          text,
		Timestamp:     s.now(),
		Meta:          meta,
		Topics:        topics,
		ReasoningUsed: reasoningUsed,
	}

	session.Turns = append(session.Turns, turn)
	session.Topics = mergeTopics(session.Topics, topics)
	session.TotalTurns++
	if reasoningUsed {
		session.ReasoningCount++
	}

	userID := session.UserID
	snapshot := *session
	snapshot.Turns = append([]core.Turn(nil), session.Turns...)
	snapshot.Topics = append([]string(nil), session.Topics...)
	s.mu.Unlock()

	err := s.vectors.Add(ctx, CollectionConversations, turn.ID, text, map[string]string{
		"session_id":     sessionID,
		"user_id":        userID,
		"role":           string(role),
		"timestamp":      turn.Timestamp.Format(time.RFC3339),
		"topics":         strings.Join(topics, ","),
		"reasoning_used": strconv.FormatBool(reasoningUsed),
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist turn to vector store")
	}

	if role == core.RoleUser {
		s.persistFacts(ctx, userID, text, topics)
	}
	if role == core.RoleAssistant && IsSolution(text) {
		s.persistSolution(ctx, userID, text, topics)
	}

	if err := s.checkpoint.Save(ctx, &snapshot); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to checkpoint session")
	}

	log.FromCtx(ctx).Debug().
		Str("turn_id", shortID(turn.ID)).
		Str("session_id", shortID(sessionID)).
		Msg("turn added")

	return turn.ID, nil
}

// AddTurnAutoRecover behaves like AddTurn but transparently recreates the
// session when the id is unknown (stale callers after a restart). The
// recovery is bounded to exactly one retry; any other error surfaces
// unchanged. It returns the id the turn actually landed in.
func (s *SessionStore) AddTurnAutoRecover(ctx context.Context, sessionID, userID string, role core.Role, text string, meta core.TurnMeta, reasoningUsed bool) (turnID, actualSessionID string, err error) {
	actualSessionID = sessionID

	err = s.retrier.Do(ctx, func() error {
		var opErr error
		turnID, opErr = s.AddTurn(ctx, actualSessionID, role, text, meta, reasoningUsed)

		var notFound *core.SessionNotFoundError
		if errors.As(opErr, &notFound) {
			log.FromCtx(ctx).Warn().
				Str("session_id", shortID(actualSessionID)).
				Msg("session not found, recreating")
			actualSessionID = s.CreateSession(ctx, userID)
		}

		return opErr
	})

	return turnID, actualSessionID, err
}

// EndSession closes a session, logs its summary stats and drops it from the
// registry. Ending an unknown or already-closed session is a no-op. A zero
// rating means unrated.
func (s *SessionStore) EndSession(ctx context.Context, sessionID string, rating int) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}

	session.EndTime = s.now()
	duration := session.EndTime.Sub(session.StartTime)
	turns := session.TotalTurns
	reasoning := session.ReasoningCount
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	ratingStr := "N/A"
	if rating > 0 {
		ratingStr = strconv.Itoa(rating)
	}
	log.FromCtx(ctx).Info().
		Str("session_id", shortID(sessionID)).
		Dur("duration", duration).
		Int("turns", turns).
		Int("reasoning", reasoning).
		Str("rating", ratingStr).
		Msg("session ended")

	if err := s.checkpoint.Remove(ctx, sessionID); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to remove session checkpoint")
	}
}

// Get returns a snapshot of an open session.
func (s *SessionStore) Get(sessionID string) (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return core.Session{}, false
	}

	snapshot := *session
	snapshot.Turns = append([]core.Turn(nil), session.Turns...)
	snapshot.Topics = append([]string(nil), session.Topics...)

	return snapshot, true
}

// OpenCount reports how many sessions are currently open.
func (s *SessionStore) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) persistFacts(ctx context.Context, userID, text string, topics []string) {
	for _, fact := range ExtractFacts(userID, text, topics, s.now()) {
		err := s.vectors.Add(ctx, CollectionFacts, fact.ID, fact.Content, map[string]string{
			"user_id":    userID,
			"category":   string(fact.Category),
			"timestamp":  fact.FirstMentioned.Format(time.RFC3339),
			"topics":     strings.Join(topics, ","),
			"confidence": strconv.FormatFloat(fact.Confidence, 'f', -1, 64),
		})
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist fact")
			continue
		}
		log.FromCtx(ctx).Debug().
			Str("category", string(fact.Category)).
			Msg("fact extracted")
	}
}

func (s *SessionStore) persistSolution(ctx context.Context, userID, text string, topics []string) {
	id := userID + "_sol_" + uuid.NewString()
	err := s.vectors.Add(ctx, CollectionSolutions, id, text, map[string]string{
		"user_id":   userID,
		"timestamp": s.now().Format(time.RFC3339),
		"topics":    strings.Join(topics, ","),
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist solution")
		return
	}
	log.FromCtx(ctx).Debug().Msg("solution saved")
}

func mergeTopics(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range incoming {
		if _, ok := seen[t]; !ok {
			existing = append(existing, t)
			seen[t] = struct{}{}
		}
	}
	return existing
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
