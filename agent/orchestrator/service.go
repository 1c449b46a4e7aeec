// Package orchestrator runs one guest turn end to end: validate, resolve
// the guest, brief the decision function, execute its selections, and
// persist the exchange. The pipeline is a compiled graph so every turn
// walks the same sequence of nodes.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
	sessionx "github.com/tanpawarit/omotenashi-concierge/agent/session"
	toolx "github.com/tanpawarit/omotenashi-concierge/agent/tool"
)

var (
	ErrInvalidPhone   = contractx.ErrInvalidPhone
	ErrInvalidMessage = contractx.ErrInvalidMessage
)

const (
	DefaultTurnTimeout = 30 * time.Second

	apologyReply = "I'm sorry, I'm experiencing technical difficulties. Please try again."
)

// GuestResolver builds the guest context for one turn.
type GuestResolver interface {
	Resolve(ctx context.Context, phoneNumber string) contractx.GuestContext
}

type Config struct {
	TurnTimeout time.Duration
}

type Orchestrator struct {
	registry *toolx.Registry
	decider  contractx.Decider
	sessions *sessionx.Store
	resolver GuestResolver

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	timeout time.Duration
	now     func() time.Time
}

func New(
	registry *toolx.Registry,
	decider contractx.Decider,
	sessions *sessionx.Store,
	resolver GuestResolver,
	cfg Config,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if decider == nil {
		return nil, errors.New("decider is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if resolver == nil {
		return nil, errors.New("guest resolver is required")
	}

	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}

	o := &Orchestrator{
		registry: registry,
		decider:  decider,
		sessions: sessions,
		resolver: resolver,
		timeout:  timeout,
		now:      time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Result is one finished turn as returned to the HTTP boundary.
type Result struct {
	Reply     string
	SessionID string
	ToolsUsed []string
}

// HandleMessage runs the turn pipeline. Malformed input surfaces as
// ErrInvalidPhone or ErrInvalidMessage; any other failure degrades to a
// fixed apology so the guest never sees an internal error.
func (o *Orchestrator) HandleMessage(ctx context.Context, phoneNumber, text, customPrompt string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := o.graphRunner.Invoke(ctx, GraphInput{
		PhoneNumber:  phoneNumber,
		Text:         text,
		CustomPrompt: customPrompt,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPhone) || errors.Is(err, ErrInvalidMessage) {
			return Result{}, err
		}
		log.Error().Err(err).Str("phone", phoneNumber).Msg("turn pipeline failed")
		return Result{
			Reply:     apologyReply,
			SessionID: strings.TrimSpace(phoneNumber),
			ToolsUsed: []string{},
		}, nil
	}

	return Result{
		Reply:     out.Reply,
		SessionID: out.SessionID,
		ToolsUsed: out.ToolsUsed,
	}, nil
}
