package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
)

var itemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":     map[string]any{"type": "integer", "description": "Unique item id"},
		"weight": map[string]any{"type": "number", "description": "Positive item weight"},
		"value":  map[string]any{"type": "number", "description": "Non-negative item value"},
	},
	"required": []string{"id", "weight", "value"},
}

// problemOptions are the arguments shared by knapsack_solve and knapsack_save.
func problemOptions() []mcplib.ToolOption {
	return []mcplib.ToolOption{
		mcplib.WithArray("items",
			mcplib.Description(fmt.Sprintf("Candidate items (1 to %d), each with a unique id", solver.MaxItems)),
			mcplib.Required(),
			mcplib.Items(itemSchema),
		),
		mcplib.WithNumber("capacity",
			mcplib.Description("Knapsack capacity, a positive number"),
			mcplib.Required(),
		),
		mcplib.WithString("algorithm_type",
			mcplib.Description("dp_01 (exact, optimal), greedy (fast heuristic), or fractional (items may be split). Defaults to dp_01."),
			mcplib.Enum(string(solver.Exact), string(solver.Greedy), string(solver.Fractional)),
		),
	}
}

func (s *Server) registerTools() {
	// knapsack_solve: solve without persisting.
	s.mcpServer.AddTool(
		mcplib.NewTool("knapsack_solve",
			append([]mcplib.ToolOption{
				mcplib.WithDescription(`Solve a knapsack problem and return the selection with a step-by-step trace.

WHEN TO USE: To pick the most valuable subset of items that fits a capacity.
dp_01 is optimal for whole items, greedy is a quick heuristic, and
fractional allows taking part of one item.

WHAT YOU GET BACK: selected_items, total_weight, total_value, steps
(one per decision), algorithm_used, and complexity_info.`),
				mcplib.WithReadOnlyHintAnnotation(true),
				mcplib.WithIdempotentHintAnnotation(true),
				mcplib.WithOpenWorldHintAnnotation(false),
			}, problemOptions()...)...,
		),
		s.handleSolve,
	)

	// knapsack_save: solve and store under the caller's history.
	s.mcpServer.AddTool(
		mcplib.NewTool("knapsack_save",
			append([]mcplib.ToolOption{
				mcplib.WithDescription(`Solve a knapsack problem and save it, with its solution, to your history.

Returns problem_id plus the solution. Invalid problems are not saved.`),
				mcplib.WithDestructiveHintAnnotation(false),
				mcplib.WithIdempotentHintAnnotation(false),
				mcplib.WithOpenWorldHintAnnotation(false),
			}, problemOptions()...)...,
		),
		s.handleSave,
	)

	// knapsack_history: page through saved problems.
	s.mcpServer.AddTool(
		mcplib.NewTool("knapsack_history",
			mcplib.WithDescription("List your saved knapsack problems, newest first."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum number of problems to return"),
				mcplib.Min(1),
				mcplib.Max(model.MaxHistoryLimit),
				mcplib.DefaultNumber(model.DefaultHistoryLimit),
			),
			mcplib.WithNumber("offset",
				mcplib.Description("Number of problems to skip"),
				mcplib.Min(0),
				mcplib.DefaultNumber(0),
			),
		),
		s.handleHistory,
	)

	// knapsack_problem: fetch one saved problem.
	s.mcpServer.AddTool(
		mcplib.NewTool("knapsack_problem",
			mcplib.WithDescription("Fetch one of your saved knapsack problems by id, including its full solution."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("problem_id",
				mcplib.Description("The problem id returned by knapsack_save or knapsack_history"),
				mcplib.Required(),
			),
		),
		s.handleProblem,
	)
}

func bindProblem(request mcplib.CallToolRequest) (solver.Problem, error) {
	var req model.SolveRequest
	if err := request.BindArguments(&req); err != nil {
		return solver.Problem{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return req.Problem(), nil
}

func (s *Server) handleSolve(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if _, denied := owner(ctx); denied != nil {
		return denied, nil
	}
	p, err := bindProblem(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	sol, err := s.svc.Solve(ctx, p)
	if err != nil {
		return s.failureResult("solve", err), nil
	}
	return jsonResult(sol)
}

func (s *Server) handleSave(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, denied := owner(ctx)
	if denied != nil {
		return denied, nil
	}
	p, err := bindProblem(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	rec, err := s.svc.Save(ctx, userID, p)
	if err != nil {
		return s.failureResult("save", err), nil
	}
	return jsonResult(model.SaveResponse{ProblemID: rec.ID, Solution: rec.Solution})
}

func (s *Server) handleHistory(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, denied := owner(ctx)
	if denied != nil {
		return denied, nil
	}
	page, err := s.svc.History(ctx, userID,
		request.GetInt("limit", model.DefaultHistoryLimit),
		request.GetInt("offset", 0),
	)
	if err != nil {
		return s.failureResult("history", err), nil
	}
	return jsonResult(map[string]any{
		"problems": page.Records,
		"total":    page.Total,
		"has_more": page.HasMore(),
		"limit":    page.Limit,
		"offset":   page.Offset,
	})
}

func (s *Server) handleProblem(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, denied := owner(ctx)
	if denied != nil {
		return denied, nil
	}
	raw, err := request.RequireString("problem_id")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return errorResult("problem_id must be a UUID"), nil
	}
	rec, err := s.svc.Get(ctx, userID, id)
	if err != nil {
		return s.failureResult("get problem", err), nil
	}
	return jsonResult(rec)
}
