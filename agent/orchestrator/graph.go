package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			return validateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_context",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return resolveContext(ctx, in, o.resolver)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_context: %w", err)
	}

	if err := graph.AddLambdaNode("load_history",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return loadHistory(in, o.sessions)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_history: %w", err)
	}

	if err := graph.AddLambdaNode("build_briefing",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return buildBriefing(in, o.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_briefing: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return decide(ctx, in, o.decider)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tools",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return executeTools(ctx, in, o.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("follow_up",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return followUp(ctx, in, o.decider)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node follow_up: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	if err := graph.AddLambdaNode("persist_turn",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return persistTurn(in, o.sessions)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_turn: %w", err)
	}

	if err := graph.AddLambdaNode("sweep_sessions",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (GraphOutput, error) {
			return sweepSessions(in, o.sessions)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node sweep_sessions: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_context"},
		{"resolve_context", "load_history"},
		{"load_history", "build_briefing"},
		{"build_briefing", "decide"},
		{"decide", "execute_tools"},
		{"execute_tools", "follow_up"},
		{"follow_up", "finalize_reply"},
		{"finalize_reply", "persist_turn"},
		{"persist_turn", "sweep_sessions"},
		{"sweep_sessions", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("concierge.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
