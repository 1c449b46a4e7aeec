// Package prompt assembles the decision function's briefing: base
// instructions, the guest context, the capability catalog, and any
// per-request custom instructions.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

//go:embed template/concierge.txt
var baseRaw string

const bookingTimeLayout = "Monday, January 2 2006 at 3:04 PM"

// BuildBriefing composes the full system instructions for one turn.
// customPrompt is the optional per-request addition from the API caller.
func BuildBriefing(gc contractx.GuestContext, catalog string, customPrompt string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(baseRaw))

	if guestBlock := FormatGuestContext(gc); guestBlock != "" {
		b.WriteString("\n\n")
		b.WriteString(guestBlock)
	}

	if catalog = strings.TrimSpace(catalog); catalog != "" {
		b.WriteString("\n\nAvailable tools:\n")
		b.WriteString(catalog)
	}

	if customPrompt = strings.TrimSpace(customPrompt); customPrompt != "" {
		b.WriteString("\n\nAdditional instructions: ")
		b.WriteString(customPrompt)
	}

	return b.String()
}

// FormatGuestContext renders the resolved guest and booking for the
// briefing. Empty when no guest resolved, so the decider knows to reply
// that the reservation cannot be found.
func FormatGuestContext(gc contractx.GuestContext) string {
	if !gc.HasGuest() {
		return "No guest record was found for this phone number. Apologize and explain that you cannot find their reservation."
	}

	g := gc.Guest
	vip := "No"
	if g.VIPStatus {
		vip = "Yes"
	}
	parts := []string{
		fmt.Sprintf("You are helping guest: %s (Phone: %s)", g.Name, g.PhoneNumber),
		fmt.Sprintf("Guest ID: %s", g.GuestID),
		fmt.Sprintf("Preferred Language: %s", g.PreferredLanguage),
		fmt.Sprintf("VIP Status: %s", vip),
	}
	if g.DietaryRestrictions != "" {
		parts = append(parts, fmt.Sprintf("Dietary Restrictions: %s", g.DietaryRestrictions))
	}
	if g.AccessibilityNeeds != "" {
		parts = append(parts, fmt.Sprintf("Accessibility Needs: %s", g.AccessibilityNeeds))
	}

	if gc.HasBooking() {
		bk := gc.Booking
		parts = append(parts,
			"Booking Details:",
			fmt.Sprintf("- Property ID: %s", bk.PropertyID),
		)
		if bk.PropertyName != "" {
			parts = append(parts, fmt.Sprintf("- Property Name: %s", bk.PropertyName))
		}
		if !bk.CheckIn.IsZero() {
			parts = append(parts, fmt.Sprintf("- Check-in: %s", bk.CheckIn.Format(bookingTimeLayout)))
		}
		if !bk.CheckOut.IsZero() {
			parts = append(parts, fmt.Sprintf("- Check-out: %s", bk.CheckOut.Format(bookingTimeLayout)))
		}
		if bk.RoomType != "" {
			parts = append(parts, fmt.Sprintf("- Room Type: %s", bk.RoomType))
		}
	}

	return strings.Join(parts, "\n")
}
