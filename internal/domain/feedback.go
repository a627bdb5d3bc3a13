package domain

import "time"

type SubmissionType string

const (
	TypeLowRating  SubmissionType = "low_rating"
	TypeHighRating SubmissionType = "high_rating"
)

// Identity is what survives across visits: the name and the phone in its
// canonical display form. The JSON tags are the storage contract for the
// identity cache ({"n":...,"p":...}) and must not change.
type Identity struct {
	Name  string `json:"n"`
	Phone string `json:"p"`
}

// Submission is the wire payload sent to the logging sink. Field names are
// the de facto contract with the backend; keep them stable.
type Submission struct {
	Type      SubmissionType `json:"type"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone"` // digits only, 11 digits, leading 7
	Stars     int            `json:"stars"`
	Review    string         `json:"review"` // empty for high_rating
	CreatedAt string         `json:"createdAt"`
	UserAgent string         `json:"userAgent"`
	Referer   string         `json:"referer"`
}

func NewSubmission(t SubmissionType, id Identity, stars int, review, userAgent, referer string, now time.Time) Submission {
	return Submission{
		Type:      t,
		Name:      id.Name,
		Phone:     PhoneDigits(id.Phone),
		Stars:     stars,
		Review:    review,
		CreatedAt: now.UTC().Format(time.RFC3339),
		UserAgent: userAgent,
		Referer:   referer,
	}
}

// Phase is the single state value of the feedback router. One phase plus the
// orthogonal form fields replaces the pile of independent booleans the widget
// pattern tends to grow; "Sending while the modal is closed" is unrepresentable.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseLowRatingCapture     Phase = "low_rating_capture"
	PhaseSending              Phase = "sending"
	PhaseSucceeded            Phase = "succeeded"
	PhaseFailed               Phase = "failed"
	PhaseHighRatingDispatched Phase = "high_rating_dispatched"
)

// DeliveryRecord is the journal row for one sink emit outcome. Metadata only;
// the core never retains the payload after transmission.
type DeliveryRecord struct {
	Type     SubmissionType
	Stars    int
	Strategy string // beacon|fallback|none
	Status   int    // HTTP status, 0 when no request was made
	Reason   string
}
