// Package directory provides the guest/booking persistence collaborators.
// Both implementations return (nil, nil) for not-found; the core treats an
// unknown guest as a representable state, never an error.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

// JSONDirectory serves guest and booking records from JSON seed files,
// indexed at load time. Read-only afterwards, safe for concurrent use.
type JSONDirectory struct {
	guestsByPhone   map[string]contractx.Guest
	bookingsByGuest map[string]contractx.Booking
}

// LoadJSON builds a directory from guests and bookings files.
func LoadJSON(guestsPath, bookingsPath string) (*JSONDirectory, error) {
	var guests []contractx.Guest
	if err := readJSON(guestsPath, &guests); err != nil {
		return nil, err
	}
	var bookings []contractx.Booking
	if err := readJSON(bookingsPath, &bookings); err != nil {
		return nil, err
	}
	return NewJSON(guests, bookings), nil
}

func NewJSON(guests []contractx.Guest, bookings []contractx.Booking) *JSONDirectory {
	d := &JSONDirectory{
		guestsByPhone:   make(map[string]contractx.Guest, len(guests)),
		bookingsByGuest: make(map[string]contractx.Booking, len(bookings)),
	}
	for _, g := range guests {
		d.guestsByPhone[g.PhoneNumber] = g
	}
	for _, b := range bookings {
		d.bookingsByGuest[b.GuestID] = b
	}
	log.Info().Int("guests", len(guests)).Int("bookings", len(bookings)).Msg("guest directory loaded")
	return d
}

func (d *JSONDirectory) GetGuest(ctx context.Context, phoneNumber string) (*contractx.Guest, error) {
	g, ok := d.guestsByPhone[phoneNumber]
	if !ok {
		return nil, nil
	}
	copied := g
	return &copied, nil
}

func (d *JSONDirectory) GetBooking(ctx context.Context, guestID string) (*contractx.Booking, error) {
	b, ok := d.bookingsByGuest[guestID]
	if !ok {
		return nil, nil
	}
	copied := b
	return &copied, nil
}

// Guests lists every profile, for the demo admin endpoint.
func (d *JSONDirectory) Guests(ctx context.Context) ([]contractx.Guest, error) {
	out := make([]contractx.Guest, 0, len(d.guestsByPhone))
	for _, g := range d.guestsByPhone {
		out = append(out, g)
	}
	return out, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
