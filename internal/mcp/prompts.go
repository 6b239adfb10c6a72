package mcp

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	// choose-algorithm: walks the agent through picking a solver.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("choose-algorithm",
			mcplib.WithPromptDescription("Pick the right knapsack algorithm for a problem before solving it"),
			mcplib.WithArgument("divisible",
				mcplib.ArgumentDescription("\"yes\" if items may be split into fractions, otherwise \"no\""),
				mcplib.RequiredArgument(),
			),
		),
		s.handleChooseAlgorithmPrompt,
	)
}

func (s *Server) handleChooseAlgorithmPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	divisible := request.Params.Arguments["divisible"]
	var text string
	switch divisible {
	case "yes":
		text = `Items can be split, so this is a fractional knapsack problem.

1. CALL knapsack_solve with algorithm_type="fractional".
   It is optimal: items are taken whole in value/weight order and at most
   one item is taken partially to fill the remaining capacity.
2. READ selected_items[].fraction to see how much of each item was taken.
3. If the result should be kept, call knapsack_save with the same arguments.`
	case "no":
		text = `Items are indivisible, so this is a 0/1 knapsack problem.

1. CALL knapsack_solve with algorithm_type="dp_01" for the optimal answer.
   Capacity (scaled to whole units by the weights' decimal places) must stay
   at or below 10000; otherwise use algorithm_type="greedy".
2. greedy is fast but may miss the optimum. complexity_info.optimal tells you
   which guarantee you got.
3. Walk steps[] to explain the selection, then call knapsack_save if the
   result should be kept.`
	default:
		return nil, fmt.Errorf("divisible argument must be \"yes\" or \"no\"")
	}

	return &mcplib.GetPromptResult{
		Description: "Choosing a knapsack algorithm",
		Messages: []mcplib.PromptMessage{
			{
				Role:    mcplib.RoleUser,
				Content: mcplib.TextContent{Type: "text", Text: text},
			},
		},
	}, nil
}
