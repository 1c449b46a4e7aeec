// Package decider adapts an LLM chat model into the contract.Decider
// boundary. The reasoning itself is external; this package owns the
// protocol: briefing in, tool selections and a reply out, with executed
// capabilities reported structurally rather than inferred from text.
package decider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

// LLMDecider runs two compiled graphs over the same model: a tool-bound
// pass that may select capabilities, and a plain pass that folds tool
// outcomes into the final reply.
type LLMDecider struct {
	toolRunner  compose.Runnable[map[string]any, *schema.Message]
	replyRunner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Decider = (*LLMDecider)(nil)

func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, tools []*schema.ToolInfo) (*LLMDecider, error) {
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrDecide, err)
	}
	toolRunner, err := compileDecisionGraph(ctx, toolModel, "decider.tool_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool graph: %v", contractx.ErrDecide, err)
	}
	replyRunner, err := compileDecisionGraph(ctx, chatModel, "decider.reply_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile reply graph: %v", contractx.ErrDecide, err)
	}
	return &LLMDecider{
		toolRunner:  toolRunner,
		replyRunner: replyRunner,
	}, nil
}

func (d *LLMDecider) Decide(ctx context.Context, req contractx.DecideRequest) (contractx.Decision, error) {
	payload := map[string]any{
		"user_message": req.Utterance,
		"history":      historyPayload(req.History),
	}
	runner := d.toolRunner
	if len(req.Outcomes) > 0 {
		// Follow-up pass: outcomes go back in, no further tool calls.
		payload["tool_results"] = req.Outcomes
		runner = d.replyRunner
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: marshal payload: %v", contractx.ErrDecide, err)
	}

	msg, err := runner.Invoke(ctx, map[string]any{
		"briefing": req.Briefing,
		"input":    string(input),
	})
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: model invoke: %v", contractx.ErrDecide, err)
	}
	if msg == nil {
		return contractx.Decision{}, fmt.Errorf("%w: empty model response", contractx.ErrDecide)
	}

	selections, err := toSelections(msg.ToolCalls)
	if err != nil {
		return contractx.Decision{}, err
	}
	return contractx.Decision{
		Selections: selections,
		Reply:      strings.TrimSpace(msg.Content),
	}, nil
}

// toSelections maps raw model tool calls to selections. Empty names and
// unparseable argument JSON are protocol violations.
func toSelections(calls []schema.ToolCall) ([]contractx.ToolSelection, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]contractx.ToolSelection, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrDecide)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrDecide, name, err)
			}
		}
		out = append(out, contractx.ToolSelection{Tool: name, Args: args})
	}
	return out, nil
}

func historyPayload(history []contractx.Message) []map[string]string {
	out := make([]map[string]string, 0, len(history))
	for _, m := range history {
		out = append(out, map[string]string{
			"role":    m.Role,
			"content": m.Content,
		})
	}
	return out
}
