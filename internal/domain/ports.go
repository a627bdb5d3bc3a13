package domain

import "context"

// IdentityStore persists the identity across visits, keyed by the caller's
// stable device key. Load reports ok=false (not an error) for absent or
// malformed values so a broken cache can never block session creation.
type IdentityStore interface {
	Load(ctx context.Context, key string) (Identity, bool, error)
	Save(ctx context.Context, key string, id Identity) error
}

// Sink is the delivery channel to the remote logging backend. Emit is
// best-effort and fire-and-forget: it never blocks the caller on network I/O
// and never surfaces a transport failure.
type Sink interface {
	Emit(sub Submission)
}

// SubmissionHandler is the injected collaborator awaited by the low-rating
// flow. Its error is the only failure a user ever sees.
type SubmissionHandler interface {
	Handle(ctx context.Context, sub Submission) error
}

// DeliveryJournal records sink emit outcomes for operators. Optional; a nil
// journal disables recording.
type DeliveryJournal interface {
	Record(ctx context.Context, rec DeliveryRecord) error
}
