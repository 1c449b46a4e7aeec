package contract

import (
	"strings"
	"time"
)

// Guest is the directory-owned profile record. The core only reads it.
type Guest struct {
	GuestID             string `json:"guest_id"`
	PhoneNumber         string `json:"phone_number"`
	Name                string `json:"name"`
	PreferredLanguage   string `json:"preferred_language"`
	VIPStatus           bool   `json:"vip_status"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  string `json:"accessibility_needs,omitempty"`
}

// Booking is the guest's current reservation. One booking per guest.
type Booking struct {
	PropertyID   string    `json:"property_id"`
	GuestID      string    `json:"guest_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	RoomType     string    `json:"room_type,omitempty"`
	PropertyName string    `json:"property_name,omitempty"`
}

// GuestContext is built once per turn and personalizes both the briefing
// and every executor. Invariant: Booking != nil implies Guest != nil.
type GuestContext struct {
	Guest   *Guest
	Booking *Booking
}

func (gc GuestContext) HasGuest() bool {
	return gc.Guest != nil
}

func (gc GuestContext) HasBooking() bool {
	return gc.Booking != nil
}

// PropertyLabel returns a human-readable place name for outcome strings,
// falling back through property name, property id, and the given label.
func (gc GuestContext) PropertyLabel(fallback string) string {
	if gc.Booking == nil {
		return fallback
	}
	if name := strings.TrimSpace(gc.Booking.PropertyName); name != "" {
		return name
	}
	if id := strings.TrimSpace(gc.Booking.PropertyID); id != "" {
		return id
	}
	return fallback
}

const (
	RoleGuest     = "guest"
	RoleAssistant = "assistant"
)

// Message is one entry of conversation history as seen by the decider.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"timestamp"`
}

// ToolSelection is one capability pick returned by the decision function.
// Args are raw and unvalidated; the registry validates before execution.
type ToolSelection struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolOutcome is the human-readable result of one executed selection.
type ToolOutcome struct {
	Tool    string `json:"tool"`
	Outcome string `json:"outcome"`
}

// DecideRequest carries everything the decision function sees for one pass.
// Outcomes is empty on the first pass and holds executed tool outcomes on
// the follow-up pass.
type DecideRequest struct {
	Briefing  string
	History   []Message
	Utterance string
	Outcomes  []ToolOutcome
}

// Decision is the decision function's output: zero or more selections and
// a draft or final natural-language reply.
type Decision struct {
	Selections []ToolSelection
	Reply      string
}
