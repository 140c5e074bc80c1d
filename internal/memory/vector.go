package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/openpulse/pulse/internal/core"
)

// Collection names. Conversations hold the full turn history, user_facts the
// categorized durable facts, solutions the assistant turns classified as
// reusable fixes.
const (
	CollectionConversations = "conversations"
	CollectionFacts         = "user_facts"
	CollectionSolutions     = "solutions"
)

// metadataProbe is the constant query text used for metadata-only listings.
// The backend has no scan API; a fixed probe keeps such listings cheap and
// repeatable, but their order is unspecified.
const metadataProbe = "."

// Hit is one document returned from a collection query. Similarity is only
// meaningful for ranked (non-empty query text) lookups.
type Hit struct {
	ID         string
	Text       string
	Metadata   map[string]string
	Similarity float32
}

// UserStats are per-user document counts across the three collections.
type UserStats struct {
	Messages  int `json:"total_messages"`
	Facts     int `json:"total_facts"`
	Solutions int `json:"total_solutions"`
}

// Store is the embedded vector backend. All three collections share one
// embedding function.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
}

// NewStore opens (or creates) the vector store at path. An empty path keeps
// everything in memory, which tests rely on.
func NewStore(path string, embedder core.Embedder) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store: %w", err)
		}
	}

	embedFn := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	})

	s := &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}
	for _, name := range []string{CollectionConversations, CollectionFacts, CollectionSolutions} {
		col, err := db.GetOrCreateCollection(name, nil, embedFn)
		if err != nil {
			return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		s.collections[name] = col
	}

	return s, nil
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	col, ok := s.collections[name]
	if !ok {
		return nil, &core.StorageError{Collection: name, Op: "lookup", Err: fmt.Errorf("unknown collection")}
	}
	return col, nil
}

func (s *Store) Add(ctx context.Context, collection, id, text string, metadata map[string]string) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:       id,
		Content:  text,
		Metadata: metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return &core.StorageError{Collection: collection, Op: "add", Err: err}
	}

	return nil
}

// Query returns up to limit documents from a collection. With a non-empty
// queryText the hits are ranked by similarity; with an empty one the call is
// a metadata-filtered listing in unspecified order.
//
// The backend rejects result counts larger than what it holds, so the
// requested limit is clamped and then halved until the query succeeds.
func (s *Store) Query(ctx context.Context, collection, queryText string, filter map[string]string, limit int) ([]Hit, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	if n := col.Count(); limit > n {
		limit = n
	}
	if limit < 1 {
		return nil, nil
	}

	text := queryText
	if text == "" {
		text = metadataProbe
	}

	var results []chromem.Result
	for {
		results, err = col.Query(ctx, text, limit, filter, nil)
		if err == nil {
			break
		}
		if !isInsufficientResults(err) {
			return nil, &core.StorageError{Collection: collection, Op: "query", Err: err}
		}
		limit /= 2
		if limit < 1 {
			return nil, nil
		}
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:         r.ID,
			Text:       r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}

	return hits, nil
}

// Delete removes every document matching the filter. The backend deletes by
// id, so this queries ids and deletes in batches until nothing matches.
func (s *Store) Delete(ctx context.Context, collection string, filter map[string]string) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	for {
		hits, err := s.Query(ctx, collection, "", filter, 100)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			return nil
		}

		ids := make([]string, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
		if err := col.Delete(ctx, nil, nil, ids...); err != nil {
			return &core.StorageError{Collection: collection, Op: "delete", Err: err}
		}
	}
}

// PurgeUser removes every trace of a user from all three collections.
func (s *Store) PurgeUser(ctx context.Context, userID string) error {
	filter := map[string]string{"user_id": userID}
	for _, name := range []string{CollectionConversations, CollectionFacts, CollectionSolutions} {
		if err := s.Delete(ctx, name, filter); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of documents in a collection.
func (s *Store) Count(collection string) int {
	col, ok := s.collections[collection]
	if !ok {
		return 0
	}
	return col.Count()
}

// Stats counts a user's documents per collection.
func (s *Store) Stats(ctx context.Context, userID string) (UserStats, error) {
	filter := map[string]string{"user_id": userID}

	var stats UserStats
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{CollectionConversations, &stats.Messages},
		{CollectionFacts, &stats.Facts},
		{CollectionSolutions, &stats.Solutions},
	} {
		hits, err := s.Query(ctx, c.name, "", filter, s.Count(c.name))
		if err != nil {
			return UserStats{}, err
		}
		*c.dst = len(hits)
	}

	return stats, nil
}

// ListUsers returns every user id present in the conversations collection.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	hits, err := s.Query(ctx, CollectionConversations, "", nil, s.Count(CollectionConversations))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, h := range hits {
		if id := h.Metadata["user_id"]; id != "" {
			seen[id] = struct{}{}
		}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)

	return users, nil
}

func isInsufficientResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "nResults")
}
