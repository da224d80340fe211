// Package workers provides a bounded pool for the embarrassingly parallel
// per-employee phases. Each task depends only on one employee's record and
// static configuration, so no ordering is required between workers; results
// are reassembled in input order to keep downstream aggregation
// deterministic.
package workers

import (
	"context"
	"runtime"
	"sync"

	"github.com/okian/equilift/internal/domain/model"
	"github.com/okian/equilift/pkg/logger"
)

// Pool fans per-employee tasks out across a fixed set of goroutines.
type Pool struct {
	size   int
	logger logger.Logger
}

// New creates a Pool sized to the machine by default.
func New(opts ...Option) *Pool {
	p := &Pool{
		size:   runtime.NumCPU(),
		logger: logger.Get().Named("workers"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	return p.size
}

// Map applies fn to every employee using the pool. Results come back in
// input order with failed employees omitted; each failure is reported with
// the employee ID so the batch never aborts on a single bad record.
// Cancellation stops dispatch; in-flight tasks finish.
func Map[T any](ctx context.Context, p *Pool, population []model.Employee, fn func(context.Context, model.Employee) (T, error)) ([]T, []model.RecordFailure) {
	type slot struct {
		value T
		err   error
		done  bool
	}
	slots := make([]slot, len(population))

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.size; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				v, err := fn(ctx, population[i])
				slots[i] = slot{value: v, err: err, done: true}
			}
		}()
	}

dispatch:
	for i := range population {
		select {
		case <-ctx.Done():
			break dispatch
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	results := make([]T, 0, len(population))
	var failures []model.RecordFailure
	for i, s := range slots {
		switch {
		case !s.done:
			failures = append(failures, model.RecordFailure{
				EmployeeID: population[i].ID,
				Reason:     context.Cause(ctx).Error(),
			})
		case s.err != nil:
			p.logger.Debug(ctx, "task failed",
				logger.String("employee_id", population[i].ID),
				logger.Error(s.err))
			failures = append(failures, model.RecordFailure{
				EmployeeID: population[i].ID,
				Reason:     s.err.Error(),
			})
		default:
			results = append(results, s.value)
		}
	}
	return results, failures
}
