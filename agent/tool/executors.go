package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

// Fixed degradation outcomes, shared by every executor.
const (
	outcomeGuestNotFound   = "Guest not found."
	outcomeBookingNotFound = "Booking not found."
)

// Time phrases too vague to schedule against when no clock time is given.
var vagueTimeTerms = []string{"morning", "afternoon", "evening", "later", "early", "late", "night"}

func descriptors(kb contractx.KnowledgeBase) []Descriptor {
	return []Descriptor{
		{
			Name: "guest_profile",
			Desc: "Get the profile and preferences of the current guest. Use this to get guest information. No arguments needed.",
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				return mustJSON(gc.Guest)
			},
		},
		{
			Name: "booking_details",
			Desc: "Get the booking details for the current guest. Use this to get reservation information. No arguments needed.",
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				if !gc.HasBooking() {
					return outcomeBookingNotFound
				}
				return mustJSON(gc.Booking)
			},
		},
		{
			Name: "property_info",
			Desc: "Retrieve information about the current guest's property. Use this to answer questions about the hotel, amenities, services, and facilities. Arguments: query (string - what to search for).",
			Params: map[string]Param{
				"query": {Type: ParamString, Desc: "What to search for", Default: "general information"},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				if !gc.HasBooking() {
					return outcomeBookingNotFound
				}
				text, err := kb.Search(ctx, gc.Booking.PropertyID, args.String("query"))
				if err != nil {
					log.Error().Err(err).Str("property_id", gc.Booking.PropertyID).Msg("knowledge base search failed")
					return "Sorry, I'm having trouble accessing property information right now."
				}
				return text
			},
		},
		{
			Name: "schedule_cleaning",
			Desc: "Schedule a room cleaning for the current guest. Only requires the cleaning time. Arguments: cleaning_time (string - complete date and time, e.g. 'Tomorrow at 2:00 PM').",
			Params: map[string]Param{
				"cleaning_time": {Type: ParamString, Desc: "Complete date and time for cleaning", Required: true},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				if !gc.HasBooking() {
					return outcomeBookingNotFound
				}
				cleaningTime := args.String("cleaning_time")
				if isVagueTime(cleaningTime) {
					return fmt.Sprintf("I need a more specific time than %q. What exact time would work for you? "+
						"We typically clean between 10:00 AM and 2:00 PM. For example, would 11:00 AM or 1:00 PM work?", cleaningTime)
				}
				return fmt.Sprintf("Perfect! I've scheduled room cleaning for %s at %s on %s. "+
					"Our housekeeping team will arrive at the scheduled time. Please ensure the room is accessible.",
					gc.Guest.Name, gc.PropertyLabel("your room"), cleaningTime)
			},
		},
		{
			Name: "modify_checkout_time",
			Desc: "Modify the current guest's checkout time. Only requires the new checkout time. Arguments: new_checkout_time (string, e.g. '12:00 PM', 'late checkout 3:00 PM').",
			Params: map[string]Param{
				"new_checkout_time": {Type: ParamString, Desc: "New checkout time", Required: true},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				return fmt.Sprintf("Checkout time for %s (ID: %s) updated to %s.",
					gc.Guest.Name, gc.Guest.GuestID, args.String("new_checkout_time"))
			},
		},
		{
			Name: "request_transport",
			Desc: "Request transport to the airport for the current guest. Arguments: pickup_time (string), airport_code (string - destination airport code like 'SFO', 'LAX').",
			Params: map[string]Param{
				"pickup_time":  {Type: ParamString, Desc: "When to pick up the guest", Required: true},
				"airport_code": {Type: ParamString, Desc: "Destination airport code", Required: true},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				return fmt.Sprintf("Transport requested for %s (ID: %s) to %s at %s.",
					gc.Guest.Name, gc.Guest.GuestID,
					strings.ToUpper(args.String("airport_code")), args.String("pickup_time"))
			},
		},
		{
			Name: "escalate_to_manager",
			Desc: "Escalate a question or request to the property manager when no other capability can answer it. Always available as a fallback. Arguments: question (string), context (string - optional additional context).",
			Params: map[string]Param{
				"question": {Type: ParamString, Desc: "The guest's question or request that needs escalation", Required: true},
				"context":  {Type: ParamString, Desc: "Additional context about the situation", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return "Unable to escalate - guest information not found."
				}
				property := gc.PropertyLabel("Unknown Property")
				// A production port would notify the manager here; the stub logs.
				log.Info().
					Str("guest_name", gc.Guest.Name).
					Str("guest_phone", gc.Guest.PhoneNumber).
					Str("property", property).
					Str("question", args.String("question")).
					Str("context", args.String("context")).
					Msg("escalation forwarded to property manager")
				return fmt.Sprintf("I've escalated your question to the property manager at %s. "+
					"They will get back to you shortly regarding: %q. Thank you for your patience!",
					property, args.String("question"))
			},
		},
		{
			Name: "restaurant_reservation",
			Desc: "Make a restaurant reservation for the current guest. Arguments: restaurant_preference (string - cuisine or specific restaurant), date_time (string), party_size (integer), special_occasion (string - optional).",
			Params: map[string]Param{
				"restaurant_preference": {Type: ParamString, Desc: "Type of cuisine or specific restaurant request", Required: true},
				"date_time":             {Type: ParamString, Desc: "Date and time for reservation", Required: true},
				"party_size":            {Type: ParamInteger, Desc: "Number of people", Required: true},
				"special_occasion":      {Type: ParamString, Desc: "Special occasion or requirements", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				occasion := ""
				if v := args.String("special_occasion"); v != "" {
					occasion = fmt.Sprintf(" for %s", v)
				}
				return fmt.Sprintf("Perfect! I've secured a reservation for %d people at a wonderful %s restaurant in %s on %s%s. "+
					"The restaurant will ensure an exceptional dining experience.%s "+
					"You'll receive confirmation details shortly with the restaurant's address and any special instructions.",
					args.Int("party_size"), args.String("restaurant_preference"), gc.PropertyLabel("your area"),
					args.String("date_time"), occasion, dietaryNote(gc.Guest))
			},
		},
		{
			Name: "grocery_delivery",
			Desc: "Arrange grocery delivery to the guest's property. Arguments: items_requested (string), delivery_time (string), special_instructions (string - optional).",
			Params: map[string]Param{
				"items_requested":      {Type: ParamString, Desc: "List of grocery items, beverages, or food preferences", Required: true},
				"delivery_time":        {Type: ParamString, Desc: "When items should be delivered", Required: true},
				"special_instructions": {Type: ParamString, Desc: "Dietary restrictions or special requests", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				instructions := ""
				if v := args.String("special_instructions"); v != "" {
					instructions = fmt.Sprintf(" Special instructions: %s.", v)
				}
				return fmt.Sprintf("Excellent, %s! I've arranged grocery delivery to %s for %s. Your order includes: %s.%s "+
					"Our trusted local grocery partner will deliver fresh, high-quality items directly to your door.",
					gc.Guest.Name, gc.PropertyLabel("your property"), args.String("delivery_time"),
					args.String("items_requested"), instructions)
			},
		},
		{
			Name: "maintenance_request",
			Desc: "Report a maintenance issue at the property. Arguments: issue_description (string), location (string - where in the property), urgency (string - low, normal, high, or emergency; optional).",
			Params: map[string]Param{
				"issue_description": {Type: ParamString, Desc: "Description of the maintenance issue", Required: true},
				"location":          {Type: ParamString, Desc: "Where in the property the issue is located", Required: true},
				"urgency":           {Type: ParamString, Desc: "Urgency level: low, normal, high, emergency", Default: "normal"},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				urgency := strings.ToLower(args.String("urgency"))
				response, ok := maintenanceResponses[urgency]
				if !ok {
					response = maintenanceResponses["normal"]
				}
				log.Info().
					Str("guest_name", gc.Guest.Name).
					Str("issue", args.String("issue_description")).
					Str("location", args.String("location")).
					Str("urgency", urgency).
					Msg("maintenance request reported")
				return fmt.Sprintf("I've reported the %s in %s at %s %s. "+
					"You'll receive updates on the repair progress, and our team will ensure minimal disruption to your stay.",
					args.String("issue_description"), args.String("location"),
					gc.PropertyLabel("your property"), response)
			},
		},
		{
			Name: "activity_booking",
			Desc: "Book local activities and experiences for the guest. Arguments: activity_type (string), preferred_date (string), participants (integer), special_requirements (string - optional).",
			Params: map[string]Param{
				"activity_type":        {Type: ParamString, Desc: "Type of activity or experience requested", Required: true},
				"preferred_date":       {Type: ParamString, Desc: "Preferred date for the activity", Required: true},
				"participants":         {Type: ParamInteger, Desc: "Number of participants", Required: true},
				"special_requirements": {Type: ParamString, Desc: "Special requirements or preferences", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				requirements := ""
				if v := args.String("special_requirements"); v != "" {
					requirements = fmt.Sprintf(" Special arrangements: %s.", v)
				}
				return fmt.Sprintf("Wonderful! I've arranged %s for %d people on %s in %s. "+
					"This curated experience includes all necessary arrangements and transportation.%s%s "+
					"You'll receive a detailed itinerary with pickup times and contact details for your experience coordinator.",
					args.String("activity_type"), args.Int("participants"), args.String("preferred_date"),
					gc.PropertyLabel("your area"), requirements, vipNote(gc.Guest))
			},
		},
		{
			Name: "meal_delivery",
			Desc: "Order meal delivery from local restaurants to the guest's property. Arguments: cuisine_type (string), meal_items (string), delivery_time (string).",
			Params: map[string]Param{
				"cuisine_type":  {Type: ParamString, Desc: "Type of cuisine or specific restaurant", Required: true},
				"meal_items":    {Type: ParamString, Desc: "Specific dishes or meal preferences", Required: true},
				"delivery_time": {Type: ParamString, Desc: "When the meal should be delivered", Required: true},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				return fmt.Sprintf("Perfect, %s! I've ordered %s from our preferred %s restaurant for delivery to %s at %s. "+
					"The restaurant is known for fresh, high-quality ingredients and exceptional presentation.%s "+
					"Your meal will arrive beautifully packaged and will be delivered directly to your door.",
					gc.Guest.Name, args.String("meal_items"), args.String("cuisine_type"),
					gc.PropertyLabel("your villa"), args.String("delivery_time"), dietaryNote(gc.Guest))
			},
		},
		{
			Name: "spa_services",
			Desc: "Book in-villa spa and wellness services. Arguments: service_type (string - massage, facial, etc.), preferred_time (string), participants (integer), special_requests (string - optional).",
			Params: map[string]Param{
				"service_type":     {Type: ParamString, Desc: "Type of spa service (massage, facial, etc.)", Required: true},
				"preferred_time":   {Type: ParamString, Desc: "Preferred appointment time", Required: true},
				"participants":     {Type: ParamInteger, Desc: "Number of people requiring service", Required: true},
				"special_requests": {Type: ParamString, Desc: "Special requests or preferences", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				requests := ""
				if v := args.String("special_requests"); v != "" {
					requests = fmt.Sprintf(" Special arrangements: %s.", v)
				}
				return fmt.Sprintf("Exceptional choice, %s! I've arranged %s for %d people at %s on %s. "+
					"Our certified wellness professionals will bring everything needed for a luxurious spa experience "+
					"in the comfort of your private space.%s",
					gc.Guest.Name, args.String("service_type"), args.Int("participants"),
					gc.PropertyLabel("your villa"), args.String("preferred_time"), requests)
			},
		},
		{
			Name: "private_chef",
			Desc: "Arrange private chef services for in-villa dining. Arguments: meal_type (string - breakfast, lunch, dinner, or special event), date_time (string), guests (integer), cuisine_preference (string), special_occasion (string - optional).",
			Params: map[string]Param{
				"meal_type":          {Type: ParamString, Desc: "Breakfast, lunch, dinner, or special event", Required: true},
				"date_time":          {Type: ParamString, Desc: "Date and time for the meal", Required: true},
				"guests":             {Type: ParamInteger, Desc: "Number of guests", Required: true},
				"cuisine_preference": {Type: ParamString, Desc: "Cuisine type or dietary preferences", Required: true},
				"special_occasion":   {Type: ParamString, Desc: "Special occasion or theme", Default: ""},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				occasion := ""
				if v := args.String("special_occasion"); v != "" {
					occasion = fmt.Sprintf(" celebrating %s", v)
				}
				return fmt.Sprintf("Magnificent, %s! I've arranged a private chef to prepare %s for %d guests at %s on %s%s. "+
					"Your chef specializes in %s cuisine and will create an unforgettable dining experience using the finest local ingredients.%s "+
					"The service includes menu planning, shopping, cooking, elegant presentation, and cleanup.",
					gc.Guest.Name, args.String("meal_type"), args.Int("guests"), gc.PropertyLabel("your villa"),
					args.String("date_time"), occasion, args.String("cuisine_preference"), dietaryNote(gc.Guest))
			},
		},
		{
			Name: "local_recommendations",
			Desc: "Provide personalized local recommendations based on the guest's profile. Arguments: activity_category (string - dining, activities, shopping, etc.), preferences (string - optional), timeframe (string - optional, defaults to today).",
			Params: map[string]Param{
				"activity_category": {Type: ParamString, Desc: "Type of recommendation: dining, activities, shopping, etc.", Required: true},
				"preferences":       {Type: ParamString, Desc: "Guest preferences or interests", Default: ""},
				"timeframe":         {Type: ParamString, Desc: "When they want to do this activity", Default: "today"},
			},
			Exec: func(ctx context.Context, args Args, gc contractx.GuestContext) string {
				if !gc.HasGuest() {
					return outcomeGuestNotFound
				}
				preferences := ""
				if v := args.String("preferences"); v != "" {
					preferences = fmt.Sprintf(" matching your interests in %s", v)
				}
				return fmt.Sprintf("I'd be delighted to recommend the best %s options in %s for %s%s! "+
					"Based on your profile, I've curated a selection of experiences that align with your style "+
					"and the character of this destination.%s Would you like me to arrange reservations for any of these?",
					args.String("activity_category"), gc.PropertyLabel("your area"),
					args.String("timeframe"), preferences, vipNote(gc.Guest))
			},
		},
	}
}

var maintenanceResponses = map[string]string{
	"emergency": "as an emergency. Our team is on the way now",
	"high":      "as a priority. Our maintenance team will address this within 2 hours",
	"normal":    "promptly. Our maintenance team will resolve this within 4-6 hours",
	"low":       "and scheduled it. Our maintenance team will take care of it within 24 hours",
}

// isVagueTime flags phrases like "tomorrow morning" that name a part of day
// without an explicit clock time. Anything containing a ":" passes.
func isVagueTime(value string) bool {
	lower := strings.ToLower(value)
	if strings.Contains(lower, ":") {
		return false
	}
	for _, term := range vagueTimeTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func dietaryNote(g *contractx.Guest) string {
	if g == nil || strings.TrimSpace(g.DietaryRestrictions) == "" {
		return ""
	}
	return fmt.Sprintf(" Please note dietary restrictions: %s.", g.DietaryRestrictions)
}

func vipNote(g *contractx.Guest) string {
	if g == nil || !g.VIPStatus {
		return ""
	}
	return " As our VIP guest, you'll receive premium treatment and priority access."
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "Information is unavailable right now."
	}
	return string(b)
}
