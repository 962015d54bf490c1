/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package action

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/metrics"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
)

// jobBuilder fills the queue of a resolution, given the pool built for it.
type jobBuilder func(p *solver.Pool, q *solver.Queue) error

// invalidArgs marks errors of the requests themselves, as opposed to errors
// found while solving.
type invalidArgs struct {
	error
}

func (e invalidArgs) Unwrap() error { return e.error }

type outcome struct {
	plan *Plan
	err  error
}

// resolve builds the world, fills the queue and solves it on a goroutine
// that owns the pool from creation to close. When ctx or cfg.Timeout ends
// first, the goroutine is abandoned and the error wraps the context error.
func (cfg *Configuration) resolve(ctx context.Context, build jobBuilder) (*Plan, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := Timestamper()
	var res outcome
	if err := ctx.Err(); err != nil {
		res.err = errors.Wrap(err, "solver failed")
	} else {
		done := make(chan outcome, 1)
		go func() {
			plan, err := cfg.solve(build)
			done <- outcome{plan, err}
		}()
		select {
		case res = <-done:
		case <-ctx.Done():
			res.err = errors.Wrap(ctx.Err(), "solver failed")
		}
	}

	elapsed := Timestamper().Sub(start)
	cfg.Recorder.ObserveSolve(result(res.err), elapsed)
	if res.err != nil {
		return nil, res.err
	}
	cfg.Recorder.RecordOperations(res.plan.Stats.ByKind())
	cfg.logger().Debugf("resolution took %s, %d prefix operations", elapsed, res.plan.PrefixOperations)
	return res.plan, nil
}

func (cfg *Configuration) solve(build jobBuilder) (*Plan, error) {
	p, err := BuildWorld(cfg)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	q := &solver.Queue{}
	if err := build(p, q); err != nil {
		return nil, err
	}
	cfg.logger().Debugf("solving %d jobs over %d solvables", q.Len(), p.SolvableCount())

	s, err := p.CreateSolver()
	if err != nil {
		return nil, err
	}
	defer s.Release()

	if err := s.Solve(q); err != nil {
		return nil, err
	}
	t, err := s.CreateTransaction()
	if err != nil {
		return nil, err
	}
	return newPlan(t)
}

func result(err error) string {
	var solveErr *solver.SolveError
	var argsErr invalidArgs
	switch {
	case err == nil:
		return metrics.ResultSolved
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultDeadline
	case errors.Is(err, context.Canceled):
		return metrics.ResultCanceled
	case errors.As(err, &solveErr):
		return metrics.ResultUnsolvable
	case errors.As(err, &argsErr):
		return metrics.ResultInvalidArgs
	default:
		return metrics.ResultError
	}
}
