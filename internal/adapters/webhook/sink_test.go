package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"feedback_gate/internal/adapters/webhook"
	"feedback_gate/internal/domain"
)

func sub(t domain.SubmissionType) domain.Submission {
	return domain.Submission{
		Type: t, Name: "Anna", Phone: "77771234567", Stars: 2,
		Review: "the room was far too loud at night", CreatedAt: "2026-08-28T10:00:00Z",
	}
}

type memJournal struct {
	mu   sync.Mutex
	recs []domain.DeliveryRecord
}

func (j *memJournal) Record(ctx context.Context, rec domain.DeliveryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	return nil
}

func (j *memJournal) all() []domain.DeliveryRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.DeliveryRecord(nil), j.recs...)
}

func TestSink_BeaconDeliversOnce(t *testing.T) {
	var hits int32
	var gotType atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var s domain.Submission
		_ = json.NewDecoder(r.Body).Decode(&s)
		gotType.Store(string(s.Type))
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := webhook.New(webhook.NewClient(ts.URL, 100), nil, 8)
	s.Start()
	s.Emit(sub(domain.TypeHighRating))
	s.Close()

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one delivery, got %d", n)
	}
	if gotType.Load() != "high_rating" {
		t.Fatalf("wrong payload type: %v", gotType.Load())
	}
}

func TestSink_UnstartedFallsBack(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(204)
	}))
	defer ts.Close()

	j := &memJournal{}
	// queue present but dispatcher never started: the beacon primitive is
	// unavailable, so the emit must take the fallback path
	s := webhook.New(webhook.NewClient(ts.URL, 100), j, 8)
	s.Emit(sub(domain.TypeLowRating))
	s.Close()

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected fallback delivery, got %d hits", n)
	}
	recs := j.all()
	if len(recs) != 1 || recs[0].Strategy != "fallback" || recs[0].Status != 204 {
		t.Fatalf("journal: %+v", recs)
	}
}

func TestSink_NoURLIsSkipped(t *testing.T) {
	j := &memJournal{}
	s := webhook.New(nil, j, 8)
	s.Start()
	s.Emit(sub(domain.TypeHighRating))
	s.Close()

	recs := j.all()
	if len(recs) != 1 || recs[0].Strategy != "none" || recs[0].Status != 0 {
		t.Fatalf("journal: %+v", recs)
	}
}

func TestSink_FailureNeverPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	j := &memJournal{}
	s := webhook.New(webhook.NewClient(ts.URL, 100), j, 8)
	s.Start()
	// must not panic, block, or surface anything
	s.Emit(sub(domain.TypeLowRating))
	s.Close()

	recs := j.all()
	if len(recs) != 1 || recs[0].Status != 500 || recs[0].Reason == "" {
		t.Fatalf("journal: %+v", recs)
	}
}

func TestSink_QueueFullFallsBack(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := webhook.New(webhook.NewClient(ts.URL, 100), nil, 1)
	s.Start()

	// first emit occupies the dispatcher, second fills the queue, third must
	// take the fallback path without blocking
	s.Emit(sub(domain.TypeLowRating))
	waitFor(t, func() bool { return atomic.LoadInt32(&hits) == 1 })
	s.Emit(sub(domain.TypeLowRating))

	done := make(chan struct{})
	go func() {
		s.Emit(sub(domain.TypeHighRating))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked with a full queue")
	}

	close(release)
	s.Close()
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 deliveries total, got %d", n)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
