package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/solver"
)

const (
	uriAlgorithms    = "knapsack://algorithms"
	uriHistoryRecent = "knapsack://history/recent"
	recentLimit      = 10
)

func (s *Server) registerResources() {
	// knapsack://algorithms: the solvers and their complexity characteristics.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			uriAlgorithms,
			"Algorithms",
			mcplib.WithResourceDescription("Available algorithms with time/space complexity and optimality"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleAlgorithms,
	)

	// knapsack://history/recent: the caller's most recent saved problems.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			uriHistoryRecent,
			"Recent Problems",
			mcplib.WithResourceDescription("Your most recently saved knapsack problems"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleHistoryRecent,
	)
}

type algorithmInfo struct {
	Algorithm solver.Algorithm `json:"algorithm_type"`
	solver.Complexity
}

func (s *Server) handleAlgorithms(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	algs := []solver.Algorithm{solver.Exact, solver.Greedy, solver.Fractional}
	out := make([]algorithmInfo, 0, len(algs))
	for _, a := range algs {
		c, _ := solver.ComplexityOf(a)
		out = append(out, algorithmInfo{Algorithm: a, Complexity: c})
	}
	return textResource(uriAlgorithms, out)
}

func (s *Server) handleHistoryRecent(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	userID := ctxutil.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return nil, errors.New("mcp: recent history: authentication required")
	}
	page, err := s.svc.History(ctx, userID, recentLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("mcp: recent history: %w", err)
	}
	return textResource(uriHistoryRecent, page.Records)
}

func textResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
