// Package solver is the knapsack engine: it validates a problem, runs one of
// three algorithms and returns the selection together with a replayable trace
// of decision steps.
//
// Algorithms:
//   - Exact (wire name "dp_01"): 0/1 knapsack by tabulation over integer
//     capacity units. Optimal. Time O(n·C), memory O(n·C).
//   - Greedy ("greedy"): items in ratio order, each taken whole or skipped for
//     good. Not optimal. Time O(n log n), memory O(n).
//   - Fractional ("fractional"): items in ratio order, the first item that
//     does not fit is taken partially and the run stops. Optimal for the
//     fractional relaxation. Time O(n log n), memory O(n).
//
// Trace:
//
//	Every solver records one Step per decision through a Tracer. Index 0 is
//	the first real decision; the empty starting state is left to the consumer.
//	The full trace is materialised before Solve returns.
//
// Integer units for the exact solver:
//
//	Capacities and weights are real numbers. Before tabulation they are scaled
//	by 10^d, where d is the largest number of decimal places found in the
//	capacity or any weight (d ≤ MaxDecimalPlaces). The scaled capacity must not
//	exceed MaxExactCapacity units.
//
// The package performs no I/O and holds no state between calls; Solve is safe
// for concurrent use.
package solver
