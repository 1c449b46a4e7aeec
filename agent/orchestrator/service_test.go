package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
	sessionx "github.com/tanpawarit/omotenashi-concierge/agent/session"
	toolx "github.com/tanpawarit/omotenashi-concierge/agent/tool"
)

type fakeDecider struct {
	decisions []contractx.Decision
	err       error
	calls     int
	reqs      []contractx.DecideRequest
}

func (f *fakeDecider) Decide(ctx context.Context, req contractx.DecideRequest) (contractx.Decision, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.Decision{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.decisions) {
		return contractx.Decision{}, fmt.Errorf("no decision left at call=%d", f.calls)
	}
	return f.decisions[idx], nil
}

type fakeResolver struct {
	gc contractx.GuestContext
}

func (f *fakeResolver) Resolve(ctx context.Context, phoneNumber string) contractx.GuestContext {
	return f.gc
}

type fakeKB struct {
	result string
}

func (f *fakeKB) Search(ctx context.Context, propertyID, query string) (string, error) {
	return f.result, nil
}

func janeContext() contractx.GuestContext {
	return contractx.GuestContext{
		Guest: &contractx.Guest{
			GuestID:     "g1",
			PhoneNumber: "+14155550123",
			Name:        "Jane Smith",
			VIPStatus:   true,
		},
		Booking: &contractx.Booking{
			PropertyID:   "villa_azul",
			GuestID:      "g1",
			PropertyName: "Villa Azul",
		},
	}
}

func newTestOrchestrator(t *testing.T, dec contractx.Decider, gc contractx.GuestContext) (*Orchestrator, *sessionx.Store) {
	t.Helper()
	registry, err := toolx.NewRegistry(&fakeKB{result: "WiFi password: oceanview2026"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	sessions := sessionx.NewStore(time.Hour)
	o, err := New(registry, dec, sessions, &fakeResolver{gc: gc}, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o, sessions
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeDecider{}, janeContext())

	_, err := o.HandleMessage(context.Background(), "   ", "hello", "")
	if !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}

	_, err = o.HandleMessage(context.Background(), "+14155550123", "   ", "")
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestHandleMessageNoToolPath(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{decisions: []contractx.Decision{{Reply: "Hello Jane, how can I help?"}}}
	o, sessions := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "hi", "")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if result.Reply != "Hello Jane, how can I help?" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if result.SessionID != "+14155550123" {
		t.Fatalf("session id = %q", result.SessionID)
	}
	if len(result.ToolsUsed) != 0 || result.ToolsUsed == nil {
		t.Fatalf("tools_used should be an empty list, got %v", result.ToolsUsed)
	}
	if dec.calls != 1 {
		t.Fatalf("decider calls = %d, want 1 (no follow-up without outcomes)", dec.calls)
	}
	if msgs := sessions.History("+14155550123"); len(msgs) != 2 {
		t.Fatalf("turn not persisted, history = %d messages", len(msgs))
	}
}

func TestHandleMessageToolPath(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{decisions: []contractx.Decision{
		{Selections: []contractx.ToolSelection{{Tool: "guest_profile"}}},
		{Reply: "You're Jane Smith, one of our VIP guests."},
	}}
	o, _ := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "who am I?", "")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if result.Reply != "You're Jane Smith, one of our VIP guests." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != "guest_profile" {
		t.Fatalf("tools_used = %v, want [guest_profile]", result.ToolsUsed)
	}
	if dec.calls != 2 {
		t.Fatalf("decider calls = %d, want 2", dec.calls)
	}

	followUp := dec.reqs[1]
	if len(followUp.Outcomes) != 1 || followUp.Outcomes[0].Tool != "guest_profile" {
		t.Fatalf("follow-up request missing outcomes: %+v", followUp.Outcomes)
	}
	if !strings.Contains(followUp.Outcomes[0].Outcome, "Jane Smith") {
		t.Fatalf("outcome did not run the executor: %q", followUp.Outcomes[0].Outcome)
	}
}

func TestHandleMessageMultiSelection(t *testing.T) {
	t.Parallel()

	// One turn mixing a valid selection, an unknown name, a
	// validation-rejected selection, and a second valid one.
	dec := &fakeDecider{decisions: []contractx.Decision{
		{Selections: []contractx.ToolSelection{
			{Tool: "guest_profile"},
			{Tool: "time_machine"},
			{Tool: "schedule_cleaning"},
			{Tool: "modify_checkout_time", Args: map[string]any{"new_checkout_time": "3:00 PM"}},
		}},
		{Reply: "Profile found and checkout moved to 3:00 PM. What time should we clean?"},
	}}
	o, _ := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "who am I? also late checkout and a cleaning", "")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	// Only selections whose executors ran count as used, in decided order.
	if len(result.ToolsUsed) != 2 || result.ToolsUsed[0] != "guest_profile" || result.ToolsUsed[1] != "modify_checkout_time" {
		t.Fatalf("tools_used = %v, want [guest_profile modify_checkout_time]", result.ToolsUsed)
	}
	if dec.calls != 2 {
		t.Fatalf("decider calls = %d, want 2", dec.calls)
	}

	// The follow-up pass sees every produced outcome in execution order:
	// profile, the cleaning clarification, then the checkout confirmation.
	// The unknown name is dropped without an outcome.
	outcomes := dec.reqs[1].Outcomes
	if len(outcomes) != 3 {
		t.Fatalf("follow-up outcomes = %d, want 3: %+v", len(outcomes), outcomes)
	}
	if outcomes[0].Tool != "guest_profile" || !strings.Contains(outcomes[0].Outcome, "Jane Smith") {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}
	if outcomes[1].Tool != "schedule_cleaning" || !strings.Contains(outcomes[1].Outcome, "cleaning_time") {
		t.Fatalf("rejected selection should yield a clarification outcome: %+v", outcomes[1])
	}
	if outcomes[2].Tool != "modify_checkout_time" || !strings.Contains(outcomes[2].Outcome, "3:00 PM") {
		t.Fatalf("unexpected last outcome: %+v", outcomes[2])
	}

	if result.Reply != "Profile found and checkout moved to 3:00 PM. What time should we clean?" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
}

func TestHandleMessageUnknownToolDropped(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{decisions: []contractx.Decision{
		{Selections: []contractx.ToolSelection{{Tool: "time_machine"}}},
	}}
	o, _ := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "take me back", "")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(result.ToolsUsed) != 0 {
		t.Fatalf("unknown tool counted as used: %v", result.ToolsUsed)
	}
	if dec.calls != 1 {
		t.Fatalf("follow-up ran without outcomes, decider calls = %d", dec.calls)
	}
	if result.Reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", result.Reply)
	}
}

func TestHandleMessageValidationFailureBecomesClarification(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{decisions: []contractx.Decision{
		{Selections: []contractx.ToolSelection{{Tool: "schedule_cleaning"}}},
		{Reply: "What time works for your cleaning?"},
	}}
	o, _ := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "clean my room", "")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(result.ToolsUsed) != 0 {
		t.Fatalf("failed validation must not count as used: %v", result.ToolsUsed)
	}
	if dec.calls != 2 {
		t.Fatalf("clarification outcome should trigger a follow-up, calls = %d", dec.calls)
	}
	if !strings.Contains(dec.reqs[1].Outcomes[0].Outcome, "cleaning_time") {
		t.Fatalf("clarification outcome missing field name: %q", dec.reqs[1].Outcomes[0].Outcome)
	}
	if result.Reply != "What time works for your cleaning?" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
}

func TestHandleMessageDeciderFailureDegrades(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{err: errors.New("model unavailable")}
	o, sessions := newTestOrchestrator(t, dec, janeContext())

	result, err := o.HandleMessage(context.Background(), "+14155550123", "hi", "")
	if err != nil {
		t.Fatalf("decider failure must not surface as an error, got %v", err)
	}
	if result.Reply != apologyReply {
		t.Fatalf("expected apology reply, got %q", result.Reply)
	}
	if result.SessionID != "+14155550123" {
		t.Fatalf("session id = %q", result.SessionID)
	}
	if sessions.History("+14155550123") != nil {
		t.Fatal("failed turn must not be persisted")
	}
}

func TestHandleMessageCarriesHistoryAndCustomPrompt(t *testing.T) {
	t.Parallel()

	dec := &fakeDecider{decisions: []contractx.Decision{
		{Reply: "first reply"},
		{Reply: "second reply"},
	}}
	o, _ := newTestOrchestrator(t, dec, janeContext())

	if _, err := o.HandleMessage(context.Background(), "+14155550123", "first", ""); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if _, err := o.HandleMessage(context.Background(), "+14155550123", "second", "Answer briefly."); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	second := dec.reqs[1]
	if len(second.History) != 2 {
		t.Fatalf("second turn history = %d messages, want 2", len(second.History))
	}
	if second.History[0].Content != "first" || second.History[1].Content != "first reply" {
		t.Fatalf("unexpected history: %+v", second.History)
	}
	if !strings.Contains(second.Briefing, "Additional instructions: Answer briefly.") {
		t.Fatalf("briefing missing custom prompt:\n%s", second.Briefing)
	}
	if !strings.Contains(second.Briefing, "Jane Smith") {
		t.Fatalf("briefing missing guest context:\n%s", second.Briefing)
	}
}
