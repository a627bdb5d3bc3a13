package webhook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"feedback_gate/internal/adapters/observability"
	"feedback_gate/internal/domain"
)

const deliverTimeout = 15 * time.Second

// Sink implements the dual-strategy delivery channel. The primary strategy is
// beacon-style: a non-blocking enqueue onto a bounded queue drained by a
// dispatcher goroutine whose lifetime is the process, not the request — so a
// record enqueued just before the client navigates away still goes out.
// Acceptance by the queue counts as synchronous acceptance and the fallback is
// skipped. When the dispatcher is absent or the queue is full, the record is
// handed to a one-shot fire-and-forget goroutine instead.
//
// Emit never blocks on network I/O and never reports failure to the caller:
// a transport problem is a warning in the logs, nothing more.
type Sink struct {
	client  *Client
	journal domain.DeliveryJournal // nil disables journaling

	queue   chan domain.Submission
	started atomic.Bool
	wg      sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// New builds a sink. client may be nil (no sink URL configured): every emit
// then degrades to a warning. queueSize <= 0 disables the beacon queue and
// every emit takes the fallback path.
func New(client *Client, journal domain.DeliveryJournal, queueSize int) *Sink {
	s := &Sink{client: client, journal: journal, done: make(chan struct{})}
	if queueSize > 0 {
		s.queue = make(chan domain.Submission, queueSize)
	}
	return s
}

// Start launches the dispatcher. Safe to call once; a sink that is never
// started simply always falls back.
func (s *Sink) Start() {
	if s.queue == nil {
		return
	}
	s.startOnce.Do(func() {
		s.started.Store(true)
		s.wg.Add(1)
		go s.dispatch()
	})
}

// Close drains the queue and waits for in-flight deliveries.
func (s *Sink) Close() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Sink) Emit(sub domain.Submission) {
	if s.client == nil {
		log.Warn().Str("type", string(sub.Type)).Msg("sink url not configured; delivery skipped")
		observability.ObserveDelivery("none", "skipped")
		s.record(sub, "none", 0, "no sink url")
		return
	}
	// the beacon primitive is "available" only while its dispatcher runs
	if s.queue != nil && s.started.Load() {
		select {
		case s.queue <- sub:
			observability.ObserveDelivery("beacon", "accepted")
			return
		default:
			// queue full: beacon did not accept, fall through
		}
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(sub, "fallback")
	}()
}

func (s *Sink) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case sub := <-s.queue:
			s.deliver(sub, "beacon")
		case <-s.done:
			// drain whatever was already accepted
			for {
				select {
				case sub := <-s.queue:
					s.deliver(sub, "beacon")
				default:
					return
				}
			}
		}
	}
}

// deliver makes the single delivery attempt. Failures are swallowed into a
// warning log and the journal; they never reach the submission flow.
func (s *Sink) deliver(sub domain.Submission, strategy string) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	status, err := s.client.Post(ctx, sub)
	if err != nil {
		log.Warn().Err(err).
			Str("strategy", strategy).
			Str("type", string(sub.Type)).
			Msg("sink delivery failed")
		observability.ObserveDelivery(strategy, "failed")
		s.record(sub, strategy, status, err.Error())
		return
	}
	observability.ObserveDelivery(strategy, "sent")
	s.record(sub, strategy, status, "")
}

func (s *Sink) record(sub domain.Submission, strategy string, status int, reason string) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec := domain.DeliveryRecord{
		Type:     sub.Type,
		Stars:    sub.Stars,
		Strategy: strategy,
		Status:   status,
		Reason:   reason,
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("delivery journal write failed")
	}
}
