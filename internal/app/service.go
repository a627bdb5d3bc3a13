package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"feedback_gate/internal/adapters/observability"
	"feedback_gate/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBadStars        = errors.New("stars must be between 0 and 5")
	ErrNotCapturing    = errors.New("no complaint capture in progress")
	ErrReviewTooShort  = errors.New("review is too short to send")
)

type Options struct {
	// ReviewPlatformURL is returned to high-rating submitters so the client
	// can open it in a fresh browsing context.
	ReviewPlatformURL string
	// NoticeTTL is the auto-dismiss interval for the acknowledgment surface.
	NoticeTTL time.Duration
	// SessionTTL evicts sessions idle longer than this.
	SessionTTL time.Duration
	// HandlerTimeout is the ceiling on the awaited submission handler.
	HandlerTimeout time.Duration
}

func (o *Options) defaults() {
	if o.NoticeTTL == 0 {
		o.NoticeTTL = 5 * time.Second
	}
	if o.SessionTTL == 0 {
		o.SessionTTL = 30 * time.Minute
	}
	if o.HandlerTimeout == 0 {
		o.HandlerTimeout = 15 * time.Second
	}
}

// Service owns the sessions and drives the rating-gated routing: low ratings
// go through the complaint capture flow, high ratings are dispatched to the
// review platform. The sink is strictly fire-and-forget; only the submission
// handler's outcome is user-visible.
type Service struct {
	store   domain.IdentityStore // nil disables persistence
	sink    domain.Sink
	handler domain.SubmissionHandler
	opts    Options

	mu       sync.Mutex
	sessions map[string]*session

	done      chan struct{}
	closeOnce sync.Once
}

// NewService wires the router. A nil handler gets the stand-in that logs and
// waits a fixed delay.
func NewService(store domain.IdentityStore, sink domain.Sink, handler domain.SubmissionHandler, opts Options) *Service {
	opts.defaults()
	if handler == nil {
		handler = StandInHandler{}
	}
	svc := &Service{
		store:    store,
		sink:     sink,
		handler:  handler,
		opts:     opts,
		sessions: map[string]*session{},
		done:     make(chan struct{}),
	}
	go svc.janitor()
	return svc
}

// Close evicts every session and stops the janitor.
func (svc *Service) Close() {
	svc.closeOnce.Do(func() { close(svc.done) })
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for id, s := range svc.sessions {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
		delete(svc.sessions, id)
	}
}

// CreateSession opens a new session. The identity cache is consulted exactly
// once, here; a store error or malformed entry leaves the default empty
// identity in place and is never surfaced.
func (svc *Service) CreateSession(ctx context.Context, deviceKey string) View {
	s := &session{
		id:        uuid.NewString(),
		deviceKey: deviceKey,
		phase:     domain.PhaseIdle,
		lastSeen:  time.Now(),
	}
	if svc.store != nil && deviceKey != "" {
		ident, ok, err := svc.store.Load(ctx, deviceKey)
		if err != nil {
			log.Warn().Err(err).Msg("identity load failed; starting empty")
		} else if ok {
			s.identity = ident
		}
	}

	svc.mu.Lock()
	svc.sessions[s.id] = s
	svc.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (svc *Service) get(id string) (*session, error) {
	svc.mu.Lock()
	s, ok := svc.sessions[id]
	svc.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (svc *Service) Snapshot(id string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// SetIdentity updates name and/or phone. The phone goes through the
// normalizer on every call, and the result is persisted on every change
// (last write wins). A store failure is logged, never surfaced: persistence
// is not a precondition for anything.
func (svc *Service) SetIdentity(ctx context.Context, id string, name, phone *string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	if name != nil {
		s.identity.Name = *name
	}
	if phone != nil {
		s.identity.Phone = domain.NormalizePhone(*phone)
	}
	s.lastSeen = time.Now()
	ident := s.identity
	deviceKey := s.deviceKey
	view := s.viewLocked()
	s.mu.Unlock()

	if svc.store != nil && deviceKey != "" {
		if err := svc.store.Save(ctx, deviceKey, ident); err != nil {
			log.Warn().Err(err).Msg("identity save failed")
		}
	}
	return view, nil
}

// SetRating records the star selection. 0 clears it; it is never defaulted
// to anything else.
func (svc *Service) SetRating(id string, stars int) (View, error) {
	if stars < 0 || stars > 5 {
		return View{}, ErrBadStars
	}
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stars = stars
	s.lastSeen = time.Now()
	return s.viewLocked(), nil
}

// SetReview stores the complaint text, truncated at the cap as it is typed.
func (svc *Service) SetReview(id string, text string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.review = domain.ClampReview(text)
	s.lastSeen = time.Now()
	return s.viewLocked(), nil
}

// MarkTouched sets the one-way latch that unhides field-level errors
// (first blur of a gated field).
func (svc *Service) MarkTouched(id string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = true
	return s.viewLocked(), nil
}

// Dismiss manually clears the acknowledgment notice, cancelling its timer.
func (svc *Service) Dismiss(id string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissNoticeLocked()
	return s.viewLocked(), nil
}

// Submit is the primary transition. In order: the honeypot aborts silently;
// an invalid form only sets the touched latch; stars 1..3 open the complaint
// capture; stars 4..5 emit a high_rating record and dispatch the user to the
// review platform. Calls while a low-rating send is in flight are ignored.
func (svc *Service) Submit(ctx context.Context, id, honeypot, userAgent, referer string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	s.lastSeen = time.Now()

	if s.phase == domain.PhaseSending {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}
	if honeypot != "" {
		// automated submitter: no state change, no error, no delivery
		view := s.viewLocked()
		s.mu.Unlock()
		log.Debug().Str("session", id).Msg("honeypot tripped; submission dropped")
		return view, nil
	}
	v := domain.Validate(s.identity.Name, s.identity.Phone, s.stars)
	if !v.Valid {
		s.touched = true
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}

	if s.stars <= 3 {
		s.phase = domain.PhaseLowRatingCapture
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}

	sub := domain.NewSubmission(domain.TypeHighRating, s.identity, s.stars, "", userAgent, referer, time.Now())
	s.phase = domain.PhaseHighRatingDispatched
	s.reviewURL = svc.opts.ReviewPlatformURL
	s.setNoticeLocked(NoticeToast, toastText, svc.opts.NoticeTTL)
	view := s.viewLocked()
	s.mu.Unlock()

	svc.sink.Emit(sub)
	observability.ObserveSubmission(string(domain.TypeHighRating), "dispatched")
	log.Info().Str("session", id).Int("stars", sub.Stars).Msg("high rating dispatched")
	return view, nil
}

// SendComplaint is the secondary transition, reachable only from the capture
// phase and only once the review gate passes. The sink emit and the handler
// await race independently; only the handler decides success or failure.
func (svc *Service) SendComplaint(ctx context.Context, id, userAgent, referer string) (View, error) {
	s, err := svc.get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	s.lastSeen = time.Now()
	if s.phase == domain.PhaseSending {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}
	if s.phase != domain.PhaseLowRatingCapture {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, ErrNotCapturing
	}
	if !domain.ReviewAccepted(s.review) {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, ErrReviewTooShort
	}
	sub := domain.NewSubmission(domain.TypeLowRating, s.identity, s.stars, s.review, userAgent, referer, time.Now())
	s.phase = domain.PhaseSending
	s.mu.Unlock()

	// fire-and-forget; outcome deliberately ignored
	svc.sink.Emit(sub)

	hctx, cancel := context.WithTimeout(ctx, svc.opts.HandlerTimeout)
	handlerErr := svc.handler.Handle(hctx, sub)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return View{}, ErrSessionNotFound
	}
	if handlerErr != nil {
		s.phase = domain.PhaseFailed
		s.setNoticeLocked(NoticeFailure, failureText, svc.opts.NoticeTTL)
		observability.ObserveSubmission(string(domain.TypeLowRating), "failed")
		log.Warn().Err(handlerErr).Str("session", id).Msg("complaint handler failed")
	} else {
		s.phase = domain.PhaseSucceeded
		s.review = ""
		s.setNoticeLocked(NoticeSuccess, successText, svc.opts.NoticeTTL)
		observability.ObserveSubmission(string(domain.TypeLowRating), "succeeded")
		log.Info().Str("session", id).Int("stars", sub.Stars).Msg("complaint delivered")
	}
	return s.viewLocked(), nil
}

func (svc *Service) janitor() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-svc.done:
			return
		case <-t.C:
			cutoff := time.Now().Add(-svc.opts.SessionTTL)
			svc.mu.Lock()
			for id, s := range svc.sessions {
				s.mu.Lock()
				idle := s.lastSeen.Before(cutoff) && s.phase != domain.PhaseSending
				if idle {
					s.closeLocked()
					delete(svc.sessions, id)
				}
				s.mu.Unlock()
			}
			svc.mu.Unlock()
		}
	}
}

// StandInHandler is the default submission handler: log the record and wait a
// fixed delay as the completion signal.
type StandInHandler struct{ Delay time.Duration }

func (h StandInHandler) Handle(ctx context.Context, sub domain.Submission) error {
	log.Info().
		Str("type", string(sub.Type)).
		Int("stars", sub.Stars).
		Msg("no complaint handler configured; simulating completion")
	d := h.Delay
	if d <= 0 {
		d = 800 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
