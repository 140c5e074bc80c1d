package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/openpulse/pulse/internal/providers/embed"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore("", embed.NewHashEmbedder(32))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestStore_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		err := store.Add(ctx, CollectionConversations, fmt.Sprintf("doc-%d", i), fmt.Sprintf("mensagem %d", i), map[string]string{
			"user_id": "user-1",
			"role":    "user",
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	err := store.Add(ctx, CollectionConversations, "doc-other", "outra pessoa", map[string]string{
		"user_id": "user-2",
		"role":    "user",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Metadata-only listing respects the filter.
	hits, err := store.Query(ctx, CollectionConversations, "", map[string]string{"user_id": "user-1"}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 5 {
		t.Errorf("Query() returned %d hits, want 5", len(hits))
	}
	for _, h := range hits {
		if h.Metadata["user_id"] != "user-1" {
			t.Errorf("hit %s has user_id %q, want user-1", h.ID, h.Metadata["user_id"])
		}
	}

	// A limit far beyond the collection size must not error.
	hits, err = store.Query(ctx, CollectionConversations, "", map[string]string{"user_id": "user-1"}, 10000)
	if err != nil {
		t.Fatalf("Query() with oversized limit error = %v", err)
	}
	if len(hits) != 5 {
		t.Errorf("Query() with oversized limit returned %d hits, want 5", len(hits))
	}

	// Ranked query returns at most limit results.
	hits, err = store.Query(ctx, CollectionConversations, "mensagem", map[string]string{"user_id": "user-1"}, 3)
	if err != nil {
		t.Fatalf("ranked Query() error = %v", err)
	}
	if len(hits) > 3 {
		t.Errorf("ranked Query() returned %d hits, want <= 3", len(hits))
	}
}

func TestStore_QueryEmpty(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.Query(context.Background(), CollectionFacts, "", map[string]string{"user_id": "nobody"}, 10)
	if err != nil {
		t.Fatalf("Query() on empty collection error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Query() on empty collection returned %d hits, want 0", len(hits))
	}
}

func TestStore_UnknownCollection(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(context.Background(), "bogus", "id", "text", nil); err == nil {
		t.Error("Add() to unknown collection succeeded, want error")
	}
}

func TestStore_PurgeUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Spread one user's data across all three collections, more documents
	// than one delete batch to exercise the query-delete loop.
	for i := 0; i < 120; i++ {
		err := store.Add(ctx, CollectionConversations, fmt.Sprintf("c-%d", i), fmt.Sprintf("turno %d", i), map[string]string{"user_id": "victim"})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := store.Add(ctx, CollectionFacts, "f-1", "uso go", map[string]string{"user_id": "victim"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(ctx, CollectionSolutions, "s-1", "basta reiniciar", map[string]string{"user_id": "victim"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(ctx, CollectionConversations, "keep-1", "fico", map[string]string{"user_id": "bystander"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.PurgeUser(ctx, "victim"); err != nil {
		t.Fatalf("PurgeUser() error = %v", err)
	}

	stats, err := store.Stats(ctx, "victim")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Messages != 0 || stats.Facts != 0 || stats.Solutions != 0 {
		t.Errorf("Stats() after purge = %+v, want all zero", stats)
	}

	// The bystander's data survives.
	other, err := store.Stats(ctx, "bystander")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if other.Messages != 1 {
		t.Errorf("bystander has %d messages, want 1", other.Messages)
	}
}

func TestStore_ListUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i, user := range []string{"bob", "alice", "bob"} {
		err := store.Add(ctx, CollectionConversations, fmt.Sprintf("d-%d", i), "oi", map[string]string{"user_id": user})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("ListUsers() = %v, want [alice bob]", users)
	}
}
