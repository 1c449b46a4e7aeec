package contract

import "context"

// Decider is the externally delegated reasoning step: it maps a briefing,
// history, and utterance to capability selections plus a reply. The core
// owns the protocol around it, not its internals.
type Decider interface {
	Decide(ctx context.Context, req DecideRequest) (Decision, error)
}

// GuestDirectory is the persistence collaborator for guest and booking
// records. Not-found is (nil, nil), never an error.
type GuestDirectory interface {
	GetGuest(ctx context.Context, phoneNumber string) (*Guest, error)
	GetBooking(ctx context.Context, guestID string) (*Booking, error)
}

// KnowledgeBase answers property-information queries. An empty-result
// search returns a "no results" string, not an error.
type KnowledgeBase interface {
	Search(ctx context.Context, propertyID, query string) (string, error)
}
