// Package storagetest holds behavioral tests shared by every storage.Store
// implementation. Backends call Run from their own _test.go files.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
)

// Run exercises s against the storage.Store contract. The store may be shared
// with other tests; every case creates its own users.
func Run(t *testing.T, s storage.Store) {
	t.Helper()

	t.Run("CreateAndGetUser", func(t *testing.T) { testCreateAndGetUser(t, s) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, s) })
	t.Run("UserNotFound", func(t *testing.T) { testUserNotFound(t, s) })
	t.Run("SaveAndGetProblem", func(t *testing.T) { testSaveAndGetProblem(t, s) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, s) })
	t.Run("ListPagination", func(t *testing.T) { testListPagination(t, s) })
	t.Run("OwnerIsolation", func(t *testing.T) { testOwnerIsolation(t, s) })
	t.Run("IdempotencyReplay", func(t *testing.T) { testIdempotencyReplay(t, s) })
	t.Run("IdempotencyPayloadMismatch", func(t *testing.T) { testIdempotencyPayloadMismatch(t, s) })
	t.Run("IdempotencyClear", func(t *testing.T) { testIdempotencyClear(t, s) })
	t.Run("IdempotencyScopedByOwnerAndEndpoint", func(t *testing.T) { testIdempotencyScope(t, s) })
	t.Run("IdempotencyCleanup", func(t *testing.T) { testIdempotencyCleanup(t, s) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, s.Ping(context.Background())) })
}

// NewUser creates a user with a unique email.
func NewUser(t *testing.T, s storage.Store) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{
		FullName:     "Test User",
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()),
		PasswordHash: "v1$salt$hash",
	})
	require.NoError(t, err)
	return u
}

func solved(t *testing.T, capacity float64, alg solver.Algorithm) (solver.Problem, solver.Solution) {
	t.Helper()
	p := solver.Problem{
		Items: []solver.Item{
			{ID: 1, Weight: 10, Value: 60},
			{ID: 2, Weight: 20, Value: 100},
			{ID: 3, Weight: 30, Value: 120},
		},
		Capacity:  capacity,
		Algorithm: alg,
	}
	sol, err := solver.Solve(p)
	require.NoError(t, err)
	return p, sol
}

func testCreateAndGetUser(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	assert.NotEqual(t, uuid.Nil, u.ID)

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, u.FullName, byEmail.FullName)
	assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, byEmail.CreatedAt, time.Millisecond)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func testDuplicateEmail(t *testing.T, s storage.Store) {
	u := NewUser(t, s)
	_, err := s.CreateUser(context.Background(), model.User{
		FullName:     "Someone Else",
		Email:        u.Email,
		PasswordHash: "v1$salt$other",
	})
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func testUserNotFound(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.GetUserByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testSaveAndGetProblem(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	p, sol := solved(t, 50, solver.Exact)

	rec, err := s.SaveProblem(ctx, u.ID, p, sol)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, u.ID, rec.OwnerID)

	got, err := s.GetProblem(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, p.Items, got.Items)
	assert.InDelta(t, p.Capacity, got.Capacity, 0)
	assert.Equal(t, solver.Exact, got.Algorithm)
	assert.Equal(t, sol.TotalValue, got.Solution.TotalValue)
	assert.Equal(t, sol.Selected, got.Solution.Selected)
	assert.Len(t, got.Solution.Steps, len(sol.Steps))
	assert.Equal(t, sol.Complexity, got.Solution.Complexity)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Millisecond)
}

func testListNewestFirst(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)

	var ids []uuid.UUID
	for _, alg := range []solver.Algorithm{solver.Exact, solver.Greedy, solver.Fractional} {
		p, sol := solved(t, 50, alg)
		rec, err := s.SaveProblem(ctx, u.ID, p, sol)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	list, total, err := s.ListProblems(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func testListPagination(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	for i := range 5 {
		p, sol := solved(t, float64(10+i*10), solver.Greedy)
		_, err := s.SaveProblem(ctx, u.ID, p, sol)
		require.NoError(t, err)
	}

	page, total, err := s.ListProblems(ctx, u.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.InDelta(t, 50, page[0].Capacity, 0)

	page, total, err = s.ListProblems(ctx, u.ID, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 1)
	assert.InDelta(t, 10, page[0].Capacity, 0)

	page, _, err = s.ListProblems(ctx, u.ID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func testOwnerIsolation(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewUser(t, s)
	bob := NewUser(t, s)

	p, sol := solved(t, 50, solver.Exact)
	rec, err := s.SaveProblem(ctx, alice.ID, p, sol)
	require.NoError(t, err)

	_, err = s.GetProblem(ctx, bob.ID, rec.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	list, total, err := s.ListProblems(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

const testEndpoint = "POST:/api/knapsack/save"

func testIdempotencyReplay(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	key := uuid.NewString()

	lookup, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-a")
	require.NoError(t, err)
	assert.False(t, lookup.Completed, "first begin owns processing")

	_, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-a")
	require.ErrorIs(t, err, storage.ErrIdempotencyInProgress)

	problemID := uuid.New()
	require.NoError(t, s.CompleteIdempotency(ctx, u.ID, testEndpoint, key, 201,
		map[string]any{"problem_id": problemID, "total_value": 220}))

	lookup, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-a")
	require.NoError(t, err)
	assert.True(t, lookup.Completed)
	assert.Equal(t, 201, lookup.StatusCode)

	var replay struct {
		ProblemID  uuid.UUID `json:"problem_id"`
		TotalValue float64   `json:"total_value"`
	}
	require.NoError(t, json.Unmarshal(lookup.ResponseData, &replay))
	assert.Equal(t, problemID, replay.ProblemID)
	assert.Equal(t, 220.0, replay.TotalValue)

	err = s.CompleteIdempotency(ctx, u.ID, testEndpoint, key, 201, map[string]any{})
	assert.Error(t, err, "a completed key cannot be completed again")
}

func testIdempotencyPayloadMismatch(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	key := uuid.NewString()

	_, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-a")
	require.NoError(t, err)
	_, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-b")
	require.ErrorIs(t, err, storage.ErrIdempotencyPayloadMismatch)

	require.NoError(t, s.CompleteIdempotency(ctx, u.ID, testEndpoint, key, 201, map[string]any{}))
	_, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-b")
	require.ErrorIs(t, err, storage.ErrIdempotencyPayloadMismatch)
}

func testIdempotencyClear(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	key := uuid.NewString()

	_, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-a")
	require.NoError(t, err)
	require.NoError(t, s.ClearInProgressIdempotency(ctx, u.ID, testEndpoint, key))

	lookup, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-b")
	require.NoError(t, err, "a cleared key can be reserved again with any payload")
	assert.False(t, lookup.Completed)

	require.NoError(t, s.CompleteIdempotency(ctx, u.ID, testEndpoint, key, 201, map[string]any{}))
	require.NoError(t, s.ClearInProgressIdempotency(ctx, u.ID, testEndpoint, key))
	lookup, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, key, "hash-b")
	require.NoError(t, err)
	assert.True(t, lookup.Completed, "clear leaves completed keys alone")
}

func testIdempotencyScope(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewUser(t, s)
	bob := NewUser(t, s)
	key := uuid.NewString()

	_, err := s.BeginIdempotency(ctx, alice.ID, testEndpoint, key, "hash-a")
	require.NoError(t, err)

	lookup, err := s.BeginIdempotency(ctx, bob.ID, testEndpoint, key, "hash-b")
	require.NoError(t, err, "keys are per owner")
	assert.False(t, lookup.Completed)

	lookup, err = s.BeginIdempotency(ctx, alice.ID, "POST:/other", key, "hash-b")
	require.NoError(t, err, "keys are per endpoint")
	assert.False(t, lookup.Completed)
}

func testIdempotencyCleanup(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	done, pending := uuid.NewString(), uuid.NewString()

	_, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, done, "hash-a")
	require.NoError(t, err)
	require.NoError(t, s.CompleteIdempotency(ctx, u.ID, testEndpoint, done, 201, map[string]any{}))
	_, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, pending, "hash-a")
	require.NoError(t, err)

	_, err = s.CleanupIdempotencyKeys(ctx, time.Hour, time.Hour)
	require.NoError(t, err)
	lookup, err := s.BeginIdempotency(ctx, u.ID, testEndpoint, done, "hash-a")
	require.NoError(t, err)
	assert.True(t, lookup.Completed, "fresh keys survive cleanup")

	time.Sleep(10 * time.Millisecond)
	deleted, err := s.CleanupIdempotencyKeys(ctx, time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(2))

	lookup, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, done, "hash-b")
	require.NoError(t, err)
	assert.False(t, lookup.Completed, "expired key is reserved afresh")
	lookup, err = s.BeginIdempotency(ctx, u.ID, testEndpoint, pending, "hash-b")
	require.NoError(t, err)
	assert.False(t, lookup.Completed, "abandoned key no longer blocks")
}
