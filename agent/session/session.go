package session

import (
	"time"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

// Turn is one guest-utterance to assistant-reply exchange, kept only for
// conversational continuity (no durability guarantee).
type Turn struct {
	Utterance  string                  `json:"utterance"`
	Selections []string                `json:"selections,omitempty"`
	Outcomes   []contractx.ToolOutcome `json:"outcomes,omitempty"`
	Reply      string                  `json:"reply"`
	At         time.Time               `json:"timestamp"`
}

// Messages flattens a turn into the guest/assistant message pair the
// decider and the session endpoint consume.
func (t Turn) Messages() []contractx.Message {
	return []contractx.Message{
		{Role: contractx.RoleGuest, Content: t.Utterance, At: t.At},
		{Role: contractx.RoleAssistant, Content: t.Reply, At: t.At},
	}
}
