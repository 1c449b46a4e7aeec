package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
	"github.com/tanpawarit/omotenashi-concierge/agent/prompt"
	sessionx "github.com/tanpawarit/omotenashi-concierge/agent/session"
	toolx "github.com/tanpawarit/omotenashi-concierge/agent/tool"
)

// GraphInput is the raw per-turn request as received at the boundary.
type GraphInput struct {
	PhoneNumber  string
	Text         string
	CustomPrompt string
}

// GraphOutput is the finished turn.
type GraphOutput struct {
	Reply     string
	SessionID string
	ToolsUsed []string
}

// graphState threads one turn through the pipeline. Nodes mutate it in
// place and pass it along.
type graphState struct {
	Phone        string
	Text         string
	CustomPrompt string
	Now          time.Time

	GuestCtx contractx.GuestContext
	History  []contractx.Message
	Briefing string

	FirstPass     contractx.Decision
	Outcomes      []contractx.ToolOutcome
	ToolsUsed     []string
	FollowUpReply string
	Reply         string
}

const fallbackReply = "I'm here to help. Could you tell me a bit more about what you need?"

func validateRequest(in GraphInput, now func() time.Time) (*graphState, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone_number is required", contractx.ErrInvalidPhone)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is required", contractx.ErrInvalidMessage)
	}
	return &graphState{
		Phone:        phone,
		Text:         text,
		CustomPrompt: strings.TrimSpace(in.CustomPrompt),
		Now:          now(),
	}, nil
}

func resolveContext(ctx context.Context, in *graphState, resolver GuestResolver) (*graphState, error) {
	in.GuestCtx = resolver.Resolve(ctx, in.Phone)
	return in, nil
}

func loadHistory(in *graphState, sessions *sessionx.Store) (*graphState, error) {
	in.History = sessions.History(in.Phone)
	return in, nil
}

func buildBriefing(in *graphState, registry *toolx.Registry) (*graphState, error) {
	in.Briefing = prompt.BuildBriefing(in.GuestCtx, registry.CatalogText(), in.CustomPrompt)
	return in, nil
}

func decide(ctx context.Context, in *graphState, decider contractx.Decider) (*graphState, error) {
	decision, err := decider.Decide(ctx, contractx.DecideRequest{
		Briefing:  in.Briefing,
		History:   in.History,
		Utterance: in.Text,
	})
	if err != nil {
		return nil, err
	}
	in.FirstPass = decision
	return in, nil
}

// executeTools runs every validated selection in order. An unknown tool
// name is dropped with a warning; a validation failure becomes a
// clarification outcome and the selection is not counted as used. One bad
// selection never fails the turn.
func executeTools(ctx context.Context, in *graphState, registry *toolx.Registry) (*graphState, error) {
	for _, sel := range in.FirstPass.Selections {
		desc, ok := registry.Lookup(sel.Tool)
		if !ok {
			log.Warn().Err(fmt.Errorf("%w: %s", contractx.ErrUnknownTool, sel.Tool)).Msg("selection dropped")
			continue
		}
		args, err := desc.ValidateArgs(sel.Args)
		if err != nil {
			log.Warn().Err(err).Str("tool", desc.Name).Msg("tool arguments rejected")
			in.Outcomes = append(in.Outcomes, toolx.Clarification(desc.Name, err))
			continue
		}
		in.Outcomes = append(in.Outcomes, desc.Run(ctx, args, in.GuestCtx))
		in.ToolsUsed = append(in.ToolsUsed, desc.Name)
	}
	return in, nil
}

// followUp runs the second decision pass so the reply can speak to what
// the tools actually did. Skipped when no tool produced an outcome.
func followUp(ctx context.Context, in *graphState, decider contractx.Decider) (*graphState, error) {
	if len(in.Outcomes) == 0 {
		return in, nil
	}
	decision, err := decider.Decide(ctx, contractx.DecideRequest{
		Briefing:  in.Briefing,
		History:   in.History,
		Utterance: in.Text,
		Outcomes:  in.Outcomes,
	})
	if err != nil {
		return nil, err
	}
	in.FollowUpReply = decision.Reply
	return in, nil
}

// finalizeReply picks the turn's reply: the follow-up reply when a second
// pass ran, the first-pass reply otherwise, then the raw outcomes, then a
// fixed fallback. The guest always gets something.
func finalizeReply(in *graphState) (*graphState, error) {
	switch {
	case in.FollowUpReply != "":
		in.Reply = in.FollowUpReply
	case strings.TrimSpace(in.FirstPass.Reply) != "":
		in.Reply = strings.TrimSpace(in.FirstPass.Reply)
	case len(in.Outcomes) > 0:
		parts := make([]string, 0, len(in.Outcomes))
		for _, o := range in.Outcomes {
			parts = append(parts, o.Outcome)
		}
		in.Reply = strings.Join(parts, "\n\n")
	default:
		in.Reply = fallbackReply
	}
	return in, nil
}

func persistTurn(in *graphState, sessions *sessionx.Store) (*graphState, error) {
	sessions.AppendTurn(in.Phone, sessionx.Turn{
		Utterance:  in.Text,
		Selections: in.ToolsUsed,
		Outcomes:   in.Outcomes,
		Reply:      in.Reply,
		At:         in.Now,
	})
	return in, nil
}

func sweepSessions(in *graphState, sessions *sessionx.Store) (GraphOutput, error) {
	sessions.SweepExpired()
	toolsUsed := in.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	return GraphOutput{
		Reply:     in.Reply,
		SessionID: in.Phone,
		ToolsUsed: toolsUsed,
	}, nil
}
