package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"feedback_gate/internal/domain"
)

func TestNewSubmission_WireShape(t *testing.T) {
	id := domain.Identity{Name: "Ая", Phone: "+7 777 123 45 67"}
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	sub := domain.NewSubmission(domain.TypeHighRating, id, 5, "", "agent", "https://acme.example/", now)

	if sub.Phone != "77771234567" {
		t.Fatalf("phone must be digits only: %q", sub.Phone)
	}
	if sub.CreatedAt != "2026-08-28T10:30:00Z" {
		t.Fatalf("createdAt: %q", sub.CreatedAt)
	}

	b, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for _, k := range []string{"type", "name", "phone", "stars", "review", "createdAt", "userAgent", "referer"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("wire payload missing %q: %s", k, b)
		}
	}
}

func TestIdentity_StorageShape(t *testing.T) {
	b, _ := json.Marshal(domain.Identity{Name: "Ая", Phone: "+7 777"})
	if string(b) != `{"n":"Ая","p":"+7 777"}` {
		t.Fatalf("identity blob changed: %s", b)
	}
}
