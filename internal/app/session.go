package app

import (
	"sync"
	"time"

	"feedback_gate/internal/domain"
)

// Acknowledgment surface: success, failure, and the high-rating toast all go
// through the same notice, distinguished only by kind and text.
type Notice struct {
	Kind    string `json:"kind"` // success|failure|toast
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeFailure = "failure"
	NoticeToast   = "toast"

	successText = "Thank you! Your feedback has been received."
	failureText = "Something went wrong. Please try sending again."
	toastText   = "Thanks for the rating! Opening the review page for you."
)

// session is one browsing context's slice of the state machine: a single
// phase value plus the orthogonal form fields. The mutex covers every field.
type session struct {
	mu sync.Mutex

	id        string
	deviceKey string

	identity domain.Identity
	stars    int
	review   string
	touched  bool // one-way latch; only a full reload (new session) resets it

	phase     domain.Phase
	notice    *Notice
	reviewURL string // set once, on high-rating dispatch

	noticeTimer *time.Timer
	closed      bool
	lastSeen    time.Time
}

// View is the read model the presentation layer consumes. Validity flags are
// recomputed on every snapshot, never cached.
type View struct {
	ID             string       `json:"id"`
	Phase          domain.Phase `json:"phase"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Stars          int          `json:"stars"`
	Review         string       `json:"review"`
	Touched        bool         `json:"touched"`
	ValidPhone     bool         `json:"isValidPhone"`
	Valid          bool         `json:"isValid"`
	ReviewAccepted bool         `json:"reviewAccepted"`
	Notice         *Notice      `json:"notice,omitempty"`
	ReviewURL      string       `json:"reviewUrl,omitempty"`
}

func (s *session) viewLocked() View {
	v := domain.Validate(s.identity.Name, s.identity.Phone, s.stars)
	return View{
		ID:             s.id,
		Phase:          s.phase,
		Name:           s.identity.Name,
		Phone:          s.identity.Phone,
		Stars:          s.stars,
		Review:         s.review,
		Touched:        s.touched,
		ValidPhone:     v.ValidPhone,
		Valid:          v.Valid,
		ReviewAccepted: domain.ReviewAccepted(s.review),
		Notice:         s.notice,
		ReviewURL:      s.reviewURL,
	}
}

// setNoticeLocked replaces the current notice and arms its auto-dismiss
// timer. The old timer is cancelled first so a stale timer can never clear a
// newer notice; the closure re-checks identity for the same reason.
func (s *session) setNoticeLocked(kind, message string, ttl time.Duration) {
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	n := &Notice{Kind: kind, Message: message}
	s.notice = n
	if ttl <= 0 {
		return
	}
	s.noticeTimer = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.notice != n {
			return
		}
		s.notice = nil
		s.noticeTimer = nil
	})
}

// dismissNoticeLocked is the manual path; it wins over the timer.
func (s *session) dismissNoticeLocked() {
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	s.notice = nil
}

// closeLocked tears the session down, releasing the timer so it cannot fire
// against disposed state.
func (s *session) closeLocked() {
	s.closed = true
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	s.notice = nil
}
