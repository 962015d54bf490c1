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

package solver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

var (
	// ErrNoIndex is returned when solving before CreateWhatProvides was
	// called.
	ErrNoIndex = errors.New("whatprovides index has not been built")
	// ErrStaleIndex is returned when repositories changed after the
	// whatprovides index was built, or the index was rebuilt after the
	// solver was created.
	ErrStaleIndex = errors.New("whatprovides index is stale")
	// ErrAlreadySolved is returned when Solve is called twice on a solver.
	ErrAlreadySolved = errors.New("solver has already run, create a new solver")
	// ErrNotSolved is returned when deriving a transaction from a solver that
	// did not solve successfully.
	ErrNotSolved = errors.New("solver has no solution")
	// ErrStaleHandle is returned when using a handle whose pool was closed,
	// whose repository was deleted or whose solver was released.
	ErrStaleHandle = errors.New("handle is no longer valid")
	// ErrSolverActive is returned when creating a solver while another solver
	// of the same pool has not been released.
	ErrSolverActive = errors.New("pool already has an active solver")
	// ErrPoolExhausted is returned when the pool runs out of identifiers.
	ErrPoolExhausted = errors.New("pool identifier space exhausted")
)

// RecordError is returned by Repo.AddRecords when a record can't be
// registered. No record of the batch is added.
type RecordError struct {
	Record     string // fingerprint of the offending record
	Expression string // offending dependency expression or version, if any
	Err        error
}

func (e *RecordError) Error() string {
	if e.Expression != "" {
		return fmt.Sprintf("package %s: %q: %s", e.Record, e.Expression, e.Err)
	}
	return fmt.Sprintf("package %s: %s", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func newRecordError(rec *pkg.PackageRecord, expr string, err error) *RecordError {
	return &RecordError{Record: rec.GetFingerPrint(), Expression: expr, Err: err}
}

// SolveError is returned when the jobs can't be satisfied. Problems holds
// one finding per line.
type SolveError struct {
	Problems []string
}

func (e *SolveError) Error() string {
	return strings.Join(e.Problems, "\n")
}
