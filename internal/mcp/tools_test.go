package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/service/problems"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage/sqlite"
	"github.com/ashita-ai/knapsack/internal/testutil"
	"github.com/ashita-ai/knapsack/migrations"
)

var (
	testServer *Server
	testStore  *sqlite.Store
	testJWT    *auth.JWTManager
)

func TestMain(m *testing.M) {
	code, err := setupAndRun(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp tests: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func setupAndRun(m *testing.M) (int, error) {
	ctx := context.Background()
	logger := testutil.TestLogger()

	var err error
	testStore, err = sqlite.Open(ctx, ":memory:", logger)
	if err != nil {
		return 0, err
	}
	defer func() { _ = testStore.Close() }()
	if err := testStore.RunMigrations(ctx, migrations.SQLite()); err != nil {
		return 0, err
	}
	testJWT, err = auth.NewJWTManager("", "", time.Hour)
	if err != nil {
		return 0, err
	}

	testServer = New(problems.New(testStore, 5*time.Second, logger), logger, "test")
	return m.Run(), nil
}

// userContext registers a fresh user and returns a context carrying its claims.
func userContext(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	u, err := testStore.CreateUser(ctx, model.User{
		FullName:     "MCP User",
		Email:        "mcp-" + uuid.NewString() + "@example.com",
		PasswordHash: "v1$x$y",
	})
	require.NoError(t, err)
	token, _, err := testJWT.IssueToken(u)
	require.NoError(t, err)
	claims, err := testJWT.ValidateToken(token)
	require.NoError(t, err)
	return ctxutil.WithClaims(ctx, claims)
}

func callTool(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: name, Arguments: args},
	}
}

func classicArgs(alg string) map[string]any {
	return map[string]any{
		"items": []any{
			map[string]any{"id": 1, "weight": 10, "value": 60},
			map[string]any{"id": 2, "weight": 20, "value": 100},
			map[string]any{"id": 3, "weight": 30, "value": 120},
		},
		"capacity":       50,
		"algorithm_type": alg,
	}
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text
}

func TestHandleSolve(t *testing.T) {
	ctx := userContext(t)
	res, err := testServer.handleSolve(ctx, callTool("knapsack_solve", classicArgs("dp_01")))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var sol solver.Solution
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &sol))
	assert.InDelta(t, 220, sol.TotalValue, 1e-9)
	assert.True(t, sol.Complexity.Optimal)
}

func TestHandleSolveDefaultsToExact(t *testing.T) {
	ctx := userContext(t)
	args := classicArgs("")
	delete(args, "algorithm_type")
	res, err := testServer.handleSolve(ctx, callTool("knapsack_solve", args))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"algorithm_used": "dp_01"`)
}

func TestHandleSolveValidationError(t *testing.T) {
	ctx := userContext(t)
	args := classicArgs("greedy")
	args["capacity"] = 0
	res, err := testServer.handleSolve(ctx, callTool("knapsack_solve", args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "InvalidCapacity")
}

func TestHandleSolveRequiresAuth(t *testing.T) {
	res, err := testServer.handleSolve(context.Background(), callTool("knapsack_solve", classicArgs("dp_01")))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSaveHistoryProblem(t *testing.T) {
	ctx := userContext(t)

	res, err := testServer.handleSave(ctx, callTool("knapsack_save", classicArgs("fractional")))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	var saved struct {
		ProblemID  uuid.UUID `json:"problem_id"`
		TotalValue float64   `json:"total_value"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &saved))
	assert.NotEqual(t, uuid.Nil, saved.ProblemID)
	assert.InDelta(t, 240, saved.TotalValue, 1e-9)

	res, err = testServer.handleHistory(ctx, callTool("knapsack_history", map[string]any{"limit": 5}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	var page struct {
		Problems []model.ProblemRecord `json:"problems"`
		Total    int                   `json:"total"`
		Limit    int                   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Limit)
	require.Len(t, page.Problems, 1)
	assert.Equal(t, saved.ProblemID, page.Problems[0].ID)

	res, err = testServer.handleProblem(ctx, callTool("knapsack_problem", map[string]any{
		"problem_id": saved.ProblemID.String(),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), saved.ProblemID.String())
}

func TestHandleProblemOtherOwner(t *testing.T) {
	alice := userContext(t)
	bob := userContext(t)

	res, err := testServer.handleSave(alice, callTool("knapsack_save", classicArgs("greedy")))
	require.NoError(t, err)
	require.False(t, res.IsError)
	var saved model.SaveResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &saved))

	res, err = testServer.handleProblem(bob, callTool("knapsack_problem", map[string]any{
		"problem_id": saved.ProblemID.String(),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "problem not found", resultText(t, res))
}

func TestHandleProblemBadID(t *testing.T) {
	ctx := userContext(t)
	res, err := testServer.handleProblem(ctx, callTool("knapsack_problem", map[string]any{"problem_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
