// Package problems is the business logic shared by the HTTP and MCP
// surfaces: solving, saving, and browsing a user's problem history.
package problems

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
	"github.com/ashita-ai/knapsack/internal/telemetry"
)

// ErrSolveTimeout is returned when a solve outlives the configured timeout
// or the caller's context.
var ErrSolveTimeout = errors.New("problems: solve timed out")

// Outcome attribute values for knapsack.solve.count.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeTimeout  = "timeout"
	outcomeInternal = "error"
)

// Service solves problems and persists them per owner.
type Service struct {
	store   storage.Store
	timeout time.Duration
	logger  *slog.Logger

	solveDuration metric.Float64Histogram
	solveCount    metric.Int64Counter
}

// New creates a Service. A zero timeout disables the solve deadline.
func New(store storage.Store, timeout time.Duration, logger *slog.Logger) *Service {
	meter := telemetry.Meter("knapsack/problems")
	dur, _ := meter.Float64Histogram("knapsack.solve.duration",
		metric.WithDescription("Time spent inside the solver (ms)"),
		metric.WithUnit("ms"),
	)
	count, _ := meter.Int64Counter("knapsack.solve.count",
		metric.WithDescription("Solve attempts by algorithm and outcome"),
	)
	return &Service{
		store:         store,
		timeout:       timeout,
		logger:        logger,
		solveDuration: dur,
		solveCount:    count,
	}
}

// Solve runs the engine on p without persisting anything.
func (s *Service) Solve(ctx context.Context, p solver.Problem) (solver.Solution, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("knapsack.algorithm", string(p.Algorithm)),
		attribute.Int("knapsack.item_count", len(p.Items)),
	)

	if err := ctx.Err(); err != nil {
		s.record(ctx, p.Algorithm, outcomeTimeout, 0)
		return solver.Solution{}, fmt.Errorf("%w: %w", ErrSolveTimeout, err)
	}

	type result struct {
		sol solver.Solution
		err error
	}
	// Buffered so an abandoned solve can still finish and exit.
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		sol, err := solver.Solve(p)
		done <- result{sol, err}
	}()

	select {
	case <-ctx.Done():
		s.record(ctx, p.Algorithm, outcomeTimeout, time.Since(start))
		s.logger.Warn("solve abandoned", "algorithm", p.Algorithm, "items", len(p.Items), "error", ctx.Err())
		return solver.Solution{}, fmt.Errorf("%w: %w", ErrSolveTimeout, ctx.Err())
	case r := <-done:
		elapsed := time.Since(start)
		switch {
		case r.err == nil:
			s.record(ctx, p.Algorithm, outcomeOK, elapsed)
		case errors.Is(r.err, solver.ErrInternal):
			s.record(ctx, p.Algorithm, outcomeInternal, elapsed)
		default:
			s.record(ctx, p.Algorithm, outcomeInvalid, elapsed)
		}
		return r.sol, r.err
	}
}

func (s *Service) record(ctx context.Context, alg solver.Algorithm, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("algorithm", string(alg)),
		attribute.String("outcome", outcome),
	)
	s.solveCount.Add(ctx, 1, attrs)
	if outcome != outcomeTimeout {
		s.solveDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}

// Save solves p and stores the problem with its solution under owner.
// Nothing is stored when solving fails.
func (s *Service) Save(ctx context.Context, owner uuid.UUID, p solver.Problem) (model.ProblemRecord, error) {
	sol, err := s.Solve(ctx, p)
	if err != nil {
		return model.ProblemRecord{}, err
	}
	rec, err := s.store.SaveProblem(ctx, owner, p, sol)
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("problems: save: %w", err)
	}
	s.logger.Info("problem saved", "problem_id", rec.ID, "user_id", owner, "algorithm", p.Algorithm)
	return rec, nil
}

// Page is one page of an owner's history.
type Page struct {
	Records []model.ProblemRecord
	Total   int
	Limit   int
	Offset  int
}

// HasMore reports whether records exist past this page.
func (p Page) HasMore() bool {
	return p.Offset+len(p.Records) < p.Total
}

// History lists owner's saved problems newest first. Limits outside
// [1, MaxHistoryLimit] are normalized and negative offsets become 0.
func (s *Service) History(ctx context.Context, owner uuid.UUID, limit, offset int) (Page, error) {
	limit, offset = NormalizePage(limit, offset)
	recs, total, err := s.store.ListProblems(ctx, owner, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("problems: history: %w", err)
	}
	if recs == nil {
		recs = []model.ProblemRecord{}
	}
	return Page{Records: recs, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns one of owner's saved problems, or storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (model.ProblemRecord, error) {
	rec, err := s.store.GetProblem(ctx, owner, id)
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("problems: get %s: %w", id, err)
	}
	return rec, nil
}

// NormalizePage clamps history pagination parameters.
func NormalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = model.DefaultHistoryLimit
	case limit > model.MaxHistoryLimit:
		limit = model.MaxHistoryLimit
	}
	return limit, max(offset, 0)
}
