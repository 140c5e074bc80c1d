package core

import "fmt"

// SessionNotFoundError is returned by AddTurn when the session id is not in
// the open-session registry. It is recoverable: the caller may recreate the
// session and retry exactly once.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// StorageError wraps a vector-backend failure. Callers treat it as
// non-fatal and degrade to an empty result set.
type StorageError struct {
	Collection string
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vector store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ProviderError wraps a generative-provider failure. It never reaches the
// caller: deep reasoning degrades to the fast path, and an ultimate failure
// becomes a fixed apology with zero confidence.
type ProviderError struct {
	Mode ReasoningMode
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider (%s): %v", e.Mode, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
