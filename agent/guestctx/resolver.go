// Package guestctx builds the per-turn guest context. Unknown guests are a
// first-class state: the resolver never fails, it degrades to an empty
// context so the pipeline can still produce a graceful reply.
package guestctx

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

type Resolver struct {
	dir contractx.GuestDirectory
}

func NewResolver(dir contractx.GuestDirectory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve looks up the guest by phone number and, when found, the guest's
// current booking. Directory errors are logged and degrade the same way a
// miss does, so a booking can never outlive its guest in the context.
func (r *Resolver) Resolve(ctx context.Context, phoneNumber string) contractx.GuestContext {
	guest, err := r.dir.GetGuest(ctx, phoneNumber)
	if err != nil {
		log.Error().Err(err).Str("phone", phoneNumber).Msg("guest lookup failed")
		return contractx.GuestContext{}
	}
	if guest == nil {
		return contractx.GuestContext{}
	}

	booking, err := r.dir.GetBooking(ctx, guest.GuestID)
	if err != nil {
		log.Error().Err(err).Str("guest_id", guest.GuestID).Msg("booking lookup failed")
		booking = nil
	}
	return contractx.GuestContext{Guest: guest, Booking: booking}
}
