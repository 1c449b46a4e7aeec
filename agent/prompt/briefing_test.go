package prompt

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

func TestBuildBriefingUnknownGuest(t *testing.T) {
	t.Parallel()

	out := BuildBriefing(contractx.GuestContext{}, "- guest_profile: profile lookup", "")
	if !strings.Contains(out, "No guest record was found") {
		t.Fatalf("briefing for unknown guest missing degradation instruction:\n%s", out)
	}
	if !strings.Contains(out, "Available tools:\n- guest_profile") {
		t.Fatalf("briefing missing tool catalog:\n%s", out)
	}
}

func TestBuildBriefingFullContext(t *testing.T) {
	t.Parallel()

	gc := contractx.GuestContext{
		Guest: &contractx.Guest{
			GuestID:             "g1",
			PhoneNumber:         "+14155550123",
			Name:                "Jane Smith",
			PreferredLanguage:   "en",
			VIPStatus:           true,
			DietaryRestrictions: "vegetarian",
		},
		Booking: &contractx.Booking{
			PropertyID:   "villa_azul",
			PropertyName: "Villa Azul",
			CheckIn:      time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
			CheckOut:     time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			RoomType:     "Ocean Suite",
		},
	}

	out := BuildBriefing(gc, "", "Reply in one short sentence.")
	for _, want := range []string{
		"Jane Smith",
		"Guest ID: g1",
		"VIP Status: Yes",
		"Dietary Restrictions: vegetarian",
		"Property Name: Villa Azul",
		"Check-out: Monday, September 7 2026 at 11:00 AM",
		"Room Type: Ocean Suite",
		"Additional instructions: Reply in one short sentence.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("briefing missing %q:\n%s", want, out)
		}
	}
}

func TestFormatGuestContextOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	out := FormatGuestContext(contractx.GuestContext{
		Guest: &contractx.Guest{GuestID: "g2", Name: "Carlos Rivera", PreferredLanguage: "es"},
	})
	if strings.Contains(out, "Dietary Restrictions") || strings.Contains(out, "Accessibility Needs") {
		t.Fatalf("empty optional fields should be omitted:\n%s", out)
	}
	if strings.Contains(out, "Booking Details") {
		t.Fatalf("booking block rendered without a booking:\n%s", out)
	}
	if !strings.Contains(out, "VIP Status: No") {
		t.Fatalf("non-VIP flag missing:\n%s", out)
	}
}
