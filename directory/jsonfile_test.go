package directory

import (
	"context"
	"testing"
	"time"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

func seedDirectory() *JSONDirectory {
	return NewJSON(
		[]contractx.Guest{
			{GuestID: "g1", PhoneNumber: "+14155550123", Name: "Jane Smith", VIPStatus: true},
			{GuestID: "g2", PhoneNumber: "+14155550124", Name: "Carlos Rivera"},
		},
		[]contractx.Booking{
			{GuestID: "g1", PropertyID: "villa_azul", PropertyName: "Villa Azul",
				CheckOut: time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)},
		},
	)
}

func TestGetGuest(t *testing.T) {
	t.Parallel()

	d := seedDirectory()
	ctx := context.Background()

	g, err := d.GetGuest(ctx, "+14155550123")
	if err != nil {
		t.Fatalf("GetGuest() error = %v", err)
	}
	if g == nil || g.Name != "Jane Smith" {
		t.Fatalf("unexpected guest: %+v", g)
	}

	// Not-found is (nil, nil), never an error.
	g, err = d.GetGuest(ctx, "+10000000000")
	if err != nil || g != nil {
		t.Fatalf("unknown phone: guest = %v, err = %v", g, err)
	}
}

func TestGetBooking(t *testing.T) {
	t.Parallel()

	d := seedDirectory()
	ctx := context.Background()

	b, err := d.GetBooking(ctx, "g1")
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	if b == nil || b.PropertyID != "villa_azul" {
		t.Fatalf("unexpected booking: %+v", b)
	}

	b, err = d.GetBooking(ctx, "g2")
	if err != nil || b != nil {
		t.Fatalf("guest without booking: booking = %v, err = %v", b, err)
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	t.Parallel()

	d := seedDirectory()
	ctx := context.Background()

	g, _ := d.GetGuest(ctx, "+14155550123")
	g.Name = "mutated"

	again, _ := d.GetGuest(ctx, "+14155550123")
	if again.Name != "Jane Smith" {
		t.Fatalf("directory record was mutated through a returned pointer: %+v", again)
	}
}

func TestGuestsListing(t *testing.T) {
	t.Parallel()

	d := seedDirectory()
	guests, err := d.Guests(context.Background())
	if err != nil {
		t.Fatalf("Guests() error = %v", err)
	}
	if len(guests) != 2 {
		t.Fatalf("Guests() = %d entries, want 2", len(guests))
	}
}
