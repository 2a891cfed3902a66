package solver

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanfd/internal/parallel"
)

// ModelBuilder builds a fresh model, typically the same problem with a
// different strategy. Each portfolio worker owns the model it builds.
type ModelBuilder func() (*Model, error)

// PortfolioResult is the outcome of the first worker finding a solution.
type PortfolioResult struct {
	// Winner is the index of the builder whose model was solved first.
	Winner   int
	Model    *Model
	Solution Solution
	Stats    Stats
}

// SolvePortfolio solves the models of builders concurrently on a pool of
// workers and returns the first solution found; the other searches are
// cancelled. It returns (nil, nil) when every model is unsatisfiable.
func SolvePortfolio(ctx context.Context, workers int, builders ...ModelBuilder) (*PortfolioResult, error) {
	if len(builders) == 0 {
		return nil, newSolverError(ErrCodeInvalidArgument, "portfolio without model")
	}
	pool := parallel.NewWorkerPool(ctx, workers)
	defer pool.Shutdown()

	var (
		mu       sync.Mutex
		result   *PortfolioResult
		firstErr error
	)
	for i, build := range builders {
		err := pool.Submit(ctx, func(ctx context.Context) {
			m, err := build()
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "portfolio builder %d", i)
				}
				mu.Unlock()
				return
			}
			sol, err := m.Solver().FindSolution(ctx)
			log := m.Logger().WithFields(logrus.Fields{"worker": i, "found": sol != nil})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case sol != nil && result == nil:
				result = &PortfolioResult{Winner: i, Model: m, Solution: sol, Stats: m.Monitor().Stats()}
				pool.Cancel()
				log.Debug("portfolio winner")
			case err != nil && ctx.Err() == nil && firstErr == nil:
				firstErr = err
				log.WithError(err).Debug("portfolio worker failed")
			default:
				log.Debug("portfolio worker done")
			}
		})
		if err != nil {
			pool.Cancel()
			pool.Wait()
			return nil, err
		}
	}
	pool.Wait()

	if result != nil {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, firstErr
}
