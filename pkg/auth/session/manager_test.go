package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type testKeyer struct{}

func (testKeyer) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func testManager(store *memoryStore) *Manager {
	return &Manager{store: store, keyer: testKeyer{}, ttl: time.Hour}
}

func TestGenerateStoresToken(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
	if store.values["test:session:access:access-1"] != token {
		t.Fatal("expected token persisted under the access session key")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newAccessID == "access-1" || newToken == token {
		t.Fatal("expected a fresh access id and token after rotation")
	}
	if _, ok := store.values["test:session:access:access-1"]; ok {
		t.Fatal("expected old session to be deleted")
	}

	// The old token can no longer rotate.
	if _, _, err := mgr.Rotate(ctx, "access-1", token); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsMismatchedToken(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, "access-1", "forged-token"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestHasSession(t *testing.T) {
	store := newMemoryStore()
	mgr := testManager(store)
	ctx := context.Background()

	ok, err := mgr.HasSession(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no session for unknown access id")
	}

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err = mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after generate")
	}

	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ = mgr.HasSession(ctx, "access-1")
	if ok {
		t.Fatal("expected session gone after revoke")
	}
}
