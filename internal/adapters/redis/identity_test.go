package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "feedback_gate/internal/adapters/redis"
	"feedback_gate/internal/domain"
)

func newStore(t *testing.T) (*redisad.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return redisad.NewFromClient(c), mr
}

func TestStore_SaveLoad(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	id := domain.Identity{Name: "Ая", Phone: "+7 777 123 45 67"}
	if err := s.Save(ctx, "device-1", id); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load(ctx, "device-1")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got != id {
		t.Fatalf("Load: got %+v, want %+v", got, id)
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	s, _ := newStore(t)
	got, ok, err := s.Load(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if ok || got != (domain.Identity{}) {
		t.Fatalf("absent key: ok=%v id=%+v", ok, got)
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	s, mr := newStore(t)
	// non-JSON garbage under the identity key is silently ignored
	mr.Set("identity:device-2", "{not json")
	got, ok, err := s.Load(context.Background(), "device-2")
	if err != nil {
		t.Fatalf("malformed value must not error: %v", err)
	}
	if ok || got != (domain.Identity{}) {
		t.Fatalf("malformed value: ok=%v id=%+v", ok, got)
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_ = s.Save(ctx, "d", domain.Identity{Name: "First", Phone: "+7 "})
	_ = s.Save(ctx, "d", domain.Identity{Name: "Second", Phone: "+7 777"})
	got, ok, _ := s.Load(ctx, "d")
	if !ok || got.Name != "Second" || got.Phone != "+7 777" {
		t.Fatalf("expected second write, got %+v", got)
	}
}
