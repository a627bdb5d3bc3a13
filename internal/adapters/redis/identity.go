package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"feedback_gate/internal/adapters/observability"
	"feedback_gate/internal/domain"
)

const keyPrefix = "identity:"

// Store keeps one JSON identity blob per device key. It is the durable
// key-value store behind the "remember my name and phone" behavior.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewFromClient wires an existing client; used by tests.
func NewFromClient(c *redis.Client) *Store { return &Store{c: c} }

// Load fetches the stored identity. Absent or malformed values come back as
// (zero, false, nil): a corrupt cache entry must never surface as an error or
// block session creation.
func (s *Store) Load(ctx context.Context, key string) (domain.Identity, bool, error) {
	v, err := s.c.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		observability.ObserveStore("redis", "miss")
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, err
	}
	var id domain.Identity
	if err := json.Unmarshal(v, &id); err != nil {
		// malformed blob: fall back to the empty identity
		observability.ObserveStore("redis", "miss")
		return domain.Identity{}, false, nil
	}
	observability.ObserveStore("redis", "hit")
	return id, true, nil
}

// Save overwrites the stored identity. Last write wins; there is exactly one
// writer per device key, so no merge logic exists.
func (s *Store) Save(ctx context.Context, key string, id domain.Identity) error {
	b, _ := json.Marshal(id)
	observability.ObserveStore("redis", "set")
	return s.c.Set(ctx, keyPrefix+key, b, 0).Err()
}
