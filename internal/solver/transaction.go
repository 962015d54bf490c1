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
	"sort"

	"github.com/pkg/errors"
)

// OperationKind is what happens to a package when applying a transaction.
type OperationKind int

const (
	OpInstall OperationKind = iota
	OpReinstall
	OpUpgrade
	OpDowngrade
	OpChange
	OpRemove
	OpIgnore
)

var operationKindNames = []string{"install", "reinstall", "upgrade", "downgrade", "change", "remove", "ignore"}

func (k OperationKind) String() string {
	if k < 0 || int(k) >= len(operationKindNames) {
		return fmt.Sprintf("operation(%d)", int(k))
	}
	return operationKindNames[k]
}

// MarshalText renders the kind by name.
func (k OperationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseOperationKind parses the name of an operation kind.
func ParseOperationKind(s string) (OperationKind, error) {
	for i, name := range operationKindNames {
		if name == s {
			return OperationKind(i), nil
		}
	}
	return 0, errors.Errorf("unknown operation %q", s)
}

// Operation is one step of a transaction. For remove and ignore, Solvable
// is the installed package. For reinstall, upgrade, downgrade and change,
// Replaced is the installed package Solvable replaces.
type Operation struct {
	Kind     OperationKind
	Solvable Solvable
	Replaced *Solvable
}

// Stats counts the operations of a transaction per kind.
type Stats struct {
	Install   int `json:"install"`
	Reinstall int `json:"reinstall"`
	Upgrade   int `json:"upgrade"`
	Downgrade int `json:"downgrade"`
	Change    int `json:"change"`
	Remove    int `json:"remove"`
	Ignore    int `json:"ignore"`
}

// Add counts one operation of kind k.
func (st *Stats) Add(k OperationKind) {
	switch k {
	case OpInstall:
		st.Install++
	case OpReinstall:
		st.Reinstall++
	case OpUpgrade:
		st.Upgrade++
	case OpDowngrade:
		st.Downgrade++
	case OpChange:
		st.Change++
	case OpRemove:
		st.Remove++
	case OpIgnore:
		st.Ignore++
	}
}

// PrefixOperations is the number of link and unlink steps the counted
// operations make.
func (st Stats) PrefixOperations() int {
	return st.Install + st.Remove + 2*(st.Reinstall+st.Upgrade+st.Downgrade+st.Change)
}

// ByKind returns the non-zero counts keyed by operation name.
func (st Stats) ByKind() map[string]int {
	m := map[string]int{}
	for k, n := range map[OperationKind]int{
		OpInstall:   st.Install,
		OpReinstall: st.Reinstall,
		OpUpgrade:   st.Upgrade,
		OpDowngrade: st.Downgrade,
		OpChange:    st.Change,
		OpRemove:    st.Remove,
		OpIgnore:    st.Ignore,
	} {
		if n > 0 {
			m[k.String()] = n
		}
	}
	return m
}

// Transaction is the ordered diff between the solution of a solver and the
// installed repository. It is a snapshot, valid until its solver is
// released.
type Transaction struct {
	solver *Solver
	ops    []Operation
	stats  Stats
}

// CreateTransaction derives the transaction of a successful solve.
func (s *Solver) CreateTransaction() (*Transaction, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	if s.state != stateSolved {
		return nil, ErrNotSolved
	}
	p := s.pool

	chosen := map[Id]bool{}
	for _, id := range s.chosen {
		chosen[id] = true
	}

	// installed packages not in the solution, by name, in id order
	var installed []Id
	if p.installed >= 0 {
		installed = p.repos[p.installed].solvables
	}
	leaving := map[Id][]Id{}
	for _, id := range installed {
		if !chosen[id] {
			name := p.solvables[id].name
			leaving[name] = append(leaving[name], id)
		}
	}

	var (
		removes, changes, ignores []Operation
		replaced                  = map[Id]bool{}
	)
	for _, id := range s.chosen {
		if p.isInstalled(id) {
			ignores = append(ignores, Operation{Kind: OpIgnore, Solvable: p.solvableHandle(id)})
			continue
		}
		op := Operation{Kind: OpInstall, Solvable: p.solvableHandle(id)}
		name := p.solvables[id].name
		if old := leaving[name]; len(old) > 0 {
			prev := old[0]
			leaving[name] = old[1:]
			replaced[prev] = true
			handle := p.solvableHandle(prev)
			op.Replaced = &handle
			op.Kind = classify(&p.solvables[prev], &p.solvables[id])
		}
		changes = append(changes, op)
	}
	for _, id := range installed {
		if !chosen[id] && !replaced[id] {
			removes = append(removes, Operation{Kind: OpRemove, Solvable: p.solvableHandle(id)})
		}
	}

	t := &Transaction{solver: s}
	t.ops = append(t.ops, removes...)
	t.ops = append(t.ops, s.sortTopologically(changes)...)
	t.ops = append(t.ops, ignores...)
	for _, op := range t.ops {
		t.stats.Add(op.Kind)
	}
	p.debugf(VerbosityLow, "transaction has %d operations", len(t.ops))
	return t, nil
}

// classify compares the installed package old with its replacement.
func classify(old, replacement *solvable) OperationKind {
	switch c := replacement.version.Compare(old.version); {
	case c > 0:
		return OpUpgrade
	case c < 0:
		return OpDowngrade
	}
	switch {
	case replacement.record.Build == old.record.Build:
		return OpReinstall
	case replacement.record.BuildNumber > old.record.BuildNumber:
		return OpUpgrade
	case replacement.record.BuildNumber < old.record.BuildNumber:
		return OpDowngrade
	}
	return OpChange
}

// sortTopologically orders ops so that the providers of the dependencies of
// a package come before it. Ties, and cycles, are broken by the lowest
// solvable id.
func (s *Solver) sortTopologically(ops []Operation) []Operation {
	byId := map[Id]Operation{}
	for _, op := range ops {
		byId[op.Solvable.id] = op
	}

	// edges: provider -> dependents
	dependents := map[Id][]Id{}
	inDegree := map[Id]int{}
	for id := range byId {
		seen := map[Id]bool{}
		for _, dep := range s.pool.solvables[id].deps {
			for _, provider := range s.index.whatProvides(dep) {
				if _, ok := byId[provider]; !ok || provider == id || seen[provider] {
					continue
				}
				seen[provider] = true
				dependents[provider] = append(dependents[provider], id)
				inDegree[id]++
			}
		}
	}

	remaining := make([]Id, 0, len(byId))
	for id := range byId {
		remaining = append(remaining, id)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })

	done := map[Id]bool{}
	sorted := make([]Operation, 0, len(ops))
	for len(sorted) < len(ops) {
		// lowest ready id, or the lowest pending id to break a cycle
		next := Id(0)
		for _, id := range remaining {
			if !done[id] && inDegree[id] == 0 {
				next = id
				break
			}
		}
		if next == 0 {
			for _, id := range remaining {
				if !done[id] {
					next = id
					break
				}
			}
			s.pool.debugf(VerbosityMedium, "dependency cycle, installing %s first", s.fingerprint(next))
		}
		done[next] = true
		sorted = append(sorted, byId[next])
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
		}
	}
	return sorted
}

func (t *Transaction) valid() error {
	return t.solver.valid()
}

// SolvableOperations returns the operations in an order safe to apply:
// removals first, then installs ordered by dependencies, then the packages
// kept as they are.
func (t *Transaction) SolvableOperations() ([]Operation, error) {
	if err := t.valid(); err != nil {
		return nil, err
	}
	return append([]Operation(nil), t.ops...), nil
}

// Stats returns the number of operations per kind.
func (t *Transaction) Stats() (Stats, error) {
	if err := t.valid(); err != nil {
		return Stats{}, err
	}
	return t.stats, nil
}

// PrefixOperationCount returns how many changes applying the transaction
// makes to an environment: installs and removals count once, replacements
// twice (unlink, then link).
func (t *Transaction) PrefixOperationCount() (int, error) {
	if err := t.valid(); err != nil {
		return 0, err
	}
	return t.stats.PrefixOperations(), nil
}
