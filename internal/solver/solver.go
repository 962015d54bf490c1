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
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

type solverState int

const (
	stateCreated solverState = iota
	stateFailed
	stateSolved
)

// pairwise at-most-one constraints are used up to this many solvables per
// name, a sequential encoding above
const pairwiseLimit = 32

type jobState struct {
	job       Job
	selection []Id
	act       z.Lit // z.LitNull for jobs without clauses
	active    bool
}

// Solver finds a set of solvables satisfying a job queue. A solver solves
// once, create a new one per attempt.
type Solver struct {
	pool       *Pool
	generation uint64
	index      *whatProvides
	released   bool
	state      solverState

	g       *gini.Gini
	nextVar z.Var

	jobs      []jobState
	actToJob  map[z.Lit]int
	favor     map[Id]int  // solvable -> 1 favored, -1 disfavored
	updatable map[Id]bool // names under an update job

	installable map[Id]bool // solvables installable on their own
	chosen      []Id

	installedPriority map[Id]int // lazily filled by priority
}

func newSolver(p *Pool) *Solver {
	return &Solver{
		pool:        p,
		generation:  p.generation,
		index:       p.index,
		g:           gini.New(),
		nextVar:     z.Var(len(p.solvables)),
		actToJob:    map[z.Lit]int{},
		favor:       map[Id]int{},
		updatable:   map[Id]bool{},
		installable: map[Id]bool{},
	}
}

func (s *Solver) valid() error {
	if s.released {
		return errors.Wrap(ErrStaleHandle, "solver was released")
	}
	return s.pool.check(s.generation)
}

// Release frees the solver and lets the pool create a new one. Transactions
// derived from the solver become invalid. Release is idempotent.
func (s *Solver) Release() {
	if s.released {
		return
	}
	s.released = true
	s.g = nil
	s.jobs = nil
	if s.pool.check(s.generation) == nil {
		s.pool.solverActive = false
	}
}

// Solve runs the search for the jobs of q. On an unsatisfiable problem it
// returns a *SolveError explaining it; the solver holds no solution then.
func (s *Solver) Solve(q *Queue) error {
	if err := s.valid(); err != nil {
		return err
	}
	if s.state != stateCreated {
		return ErrAlreadySolved
	}
	if s.pool.index != s.index {
		return errors.Wrap(ErrStaleIndex, "index rebuilt after solver creation")
	}
	if s.index.generation != s.pool.contentGeneration {
		return errors.Wrap(ErrStaleIndex, "repositories changed since it was built")
	}
	s.state = stateFailed
	if q == nil {
		q = &Queue{}
	}

	s.pool.debugf(VerbosityLow, "solving %d jobs over %d solvables", q.Len(), len(s.pool.solvables)-1)
	s.encodeSolvables()
	s.encodeJobs(q)

	for {
		s.g.Assume(s.activeLits()...)
		if s.g.Solve() == 1 {
			break
		}
		failing := s.failingJobs()
		var weak []int
		for _, j := range failing {
			if s.jobs[j].job.Flags.Weak() {
				weak = append(weak, j)
			}
		}
		if len(weak) == 0 {
			problems := s.explain(failing)
			s.pool.debugf(VerbosityLow, "problem is unsatisfiable: %d findings", len(problems))
			return &SolveError{Problems: problems}
		}
		for _, j := range weak {
			s.jobs[j].active = false
			s.pool.debugf(VerbosityLow, "dropping weak job %s", s.describeJob(s.jobs[j]))
		}
	}

	s.search()
	s.state = stateSolved
	s.pool.debugf(VerbosityLow, "solution has %d solvables", len(s.chosen))
	return nil
}

func (s *Solver) lit(id Id) z.Lit { return z.Var(id).Pos() }

func (s *Solver) newLit() z.Lit {
	s.nextVar++
	return s.nextVar.Pos()
}

func (s *Solver) clause(lits ...z.Lit) {
	for _, m := range lits {
		s.g.Add(m)
	}
	s.g.Add(z.LitNull)
}

func (s *Solver) encodeSolvables() {
	p := s.pool
	for i := 1; i < len(p.solvables); i++ {
		id := Id(i)
		sv := &p.solvables[i]
		if sv.deleted {
			s.clause(s.lit(id).Not())
			continue
		}

		// A depends on B: not(A) or B-1.0 or ... or B-2.0
		// With no B at all, A can't be installed: not(A)
		for _, dep := range sv.deps {
			providers := s.index.whatProvides(dep)
			lits := make([]z.Lit, 0, len(providers)+1)
			lits = append(lits, s.lit(id).Not())
			for _, provider := range providers {
				lits = append(lits, s.lit(provider))
			}
			s.clause(lits...)
		}

		// A constrains B: not(A) or not(B-x) for every B-x outside the
		// constraint
		for _, con := range sv.cons {
			ms := p.dependency(con)
			for _, other := range s.index.named(ms) {
				ov := &p.solvables[other]
				if other == id || ms.MatchesParsed(&ov.record, ov.version) {
					continue
				}
				s.clause(s.lit(id).Not(), s.lit(other).Not())
			}
		}
	}

	// only one package per name
	for _, name := range s.index.names() {
		s.atMostOne(s.index.byName[name])
	}
}

// atMostOne adds constraints allowing at most one of ids.
func (s *Solver) atMostOne(ids []Id) {
	n := len(ids)
	if n < 2 {
		return
	}
	if n <= pairwiseLimit {
		// not(A) or not(B), for every pair
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				s.clause(s.lit(ids[i]).Not(), s.lit(ids[j]).Not())
			}
		}
		return
	}
	// sequential counter: aux[i] is true when one of ids[0..i] is installed
	aux := make([]z.Lit, n-1)
	for i := range aux {
		aux[i] = s.newLit()
	}
	s.clause(s.lit(ids[0]).Not(), aux[0])
	for i := 1; i < n-1; i++ {
		x := s.lit(ids[i])
		s.clause(x.Not(), aux[i])
		s.clause(aux[i-1].Not(), aux[i])
		s.clause(x.Not(), aux[i-1].Not())
	}
	s.clause(s.lit(ids[n-1]).Not(), aux[n-2].Not())
}

func (s *Solver) encodeJobs(q *Queue) {
	p := s.pool
	for i, job := range q.jobs {
		js := jobState{job: job, selection: s.selection(job), act: z.LitNull}

		switch job.Flags.verb() {
		case JobInstall, JobUpdate:
			// activation implies one of the selection:
			// not(act) or A-1.0 or ... or A-2.0
			js.act = s.newLit()
			lits := []z.Lit{js.act.Not()}
			for _, id := range js.selection {
				lits = append(lits, s.lit(id))
			}
			s.clause(lits...)
			if job.Flags.verb() == JobUpdate {
				for _, id := range js.selection {
					s.updatable[p.solvables[id].name] = true
				}
			}
		case JobErase:
			js.act = s.newLit()
			for _, id := range js.selection {
				s.clause(js.act.Not(), s.lit(id).Not())
			}
		case JobLock:
			js.act = s.newLit()
			for _, id := range js.selection {
				if p.isInstalled(id) {
					s.clause(js.act.Not(), s.lit(id))
				} else {
					s.clause(js.act.Not(), s.lit(id).Not())
				}
			}
		case JobFavor:
			for _, id := range js.selection {
				s.favor[id] = 1
			}
		case JobDisfavor:
			for _, id := range js.selection {
				s.favor[id] = -1
			}
		default:
			p.debugf(VerbosityLow, "ignoring job %d with unknown flags %#x", i, uint32(job.Flags))
		}

		if js.act != z.LitNull {
			js.active = true
			s.actToJob[js.act] = len(s.jobs)
		}
		s.jobs = append(s.jobs, js)
		p.debugf(VerbosityMedium, "job %d: %s selects %d solvables", i, s.describeJob(js), len(js.selection))
	}
}

// selection returns the solvables a job applies to, in id order.
func (s *Solver) selection(job Job) []Id {
	p := s.pool
	switch job.Flags.selection() {
	case JobSolvable:
		if job.Id > 0 && int(job.Id) < len(p.solvables) && !p.solvables[job.Id].deleted {
			return []Id{job.Id}
		}
	case JobSolvableName:
		return append([]Id(nil), s.index.byName[job.Id]...)
	case JobSolvableProvides:
		return append([]Id(nil), s.index.whatProvides(job.Id)...)
	case JobSolvableRepo:
		i := int(job.Id) - 1
		if i >= 0 && i < len(p.repos) && !p.repos[i].deleted {
			return append([]Id(nil), p.repos[i].solvables...)
		}
	case JobSolvableAll:
		var ids []Id
		for i := 1; i < len(p.solvables); i++ {
			if !p.solvables[i].deleted {
				ids = append(ids, Id(i))
			}
		}
		return ids
	}
	return nil
}

func (s *Solver) activeLits() []z.Lit {
	var lits []z.Lit
	for _, js := range s.jobs {
		if js.active {
			lits = append(lits, js.act)
		}
	}
	return lits
}

// failingJobs returns the jobs whose activation took part in the last
// conflict, in queue order.
func (s *Solver) failingJobs() []int {
	var failing []int
	for _, m := range s.g.Why(nil) {
		if j, ok := s.actToJob[m]; ok {
			failing = append(failing, j)
		}
	}
	sort.Ints(failing)
	return failing
}

// search picks the solution: requirements are visited breadth first, in job
// order, and each is satisfied by the best candidate that keeps the problem
// satisfiable. Solvables nothing requires are left out.
func (s *Solver) search() {
	p := s.pool
	acts := s.activeLits()
	decided := map[Id]bool{}
	decidedName := map[Id]bool{}
	infeasible := map[Id]bool{}
	var decisions []z.Lit

	var pending [][]Id
	for _, js := range s.jobs {
		if !js.active {
			continue
		}
		switch js.job.Flags.verb() {
		case JobInstall, JobUpdate:
			pending = append(pending, js.selection)
		case JobLock:
			for _, id := range js.selection {
				if p.isInstalled(id) {
					pending = append(pending, []Id{id})
				}
			}
		}
	}

	for len(pending) > 0 {
		candidates := pending[0]
		pending = pending[1:]

		satisfied := false
		for _, id := range candidates {
			if decided[id] {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}

		accepted := false
		for _, id := range s.policy(candidates) {
			if infeasible[id] || decidedName[p.solvables[id].name] {
				continue
			}
			s.g.Assume(acts...)
			s.g.Assume(decisions...)
			s.g.Assume(s.lit(id))
			if s.g.Solve() != 1 {
				// assumptions only grow, so it stays infeasible
				infeasible[id] = true
				continue
			}
			decided[id] = true
			decidedName[p.solvables[id].name] = true
			decisions = append(decisions, s.lit(id))
			p.debugf(VerbosityMedium, "decided %s", p.solvables[id].record.GetFingerPrint())
			for _, dep := range p.solvables[id].deps {
				pending = append(pending, s.index.whatProvides(dep))
			}
			accepted = true
			break
		}
		if !accepted {
			p.debugf(VerbosityLow, "no candidate left among %d solvables", len(candidates))
		}
	}

	s.chosen = make([]Id, 0, len(decided))
	for id := range decided {
		s.chosen = append(s.chosen, id)
	}
	sort.Slice(s.chosen, func(i, j int) bool { return s.chosen[i] < s.chosen[j] })
}

// policy returns the candidates sorted from most to least preferred.
func (s *Solver) policy(candidates []Id) []Id {
	ordered := append([]Id(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return s.better(ordered[i], ordered[j])
	})
	return ordered
}

func (s *Solver) better(a, b Id) bool {
	p := s.pool
	sa, sb := &p.solvables[a], &p.solvables[b]

	if fa, fb := s.favor[a], s.favor[b]; fa != fb {
		return fa > fb
	}
	ka := p.isInstalled(a) && !s.updatable[sa.name]
	kb := p.isInstalled(b) && !s.updatable[sb.name]
	if ka != kb {
		return ka
	}
	if pa, pb := s.priority(a), s.priority(b); pa != pb {
		return pa > pb
	}
	if ta, tb := len(sa.record.TrackFeatures), len(sb.record.TrackFeatures); ta != tb {
		return ta < tb
	}
	if c := sa.version.Compare(sb.version); c != 0 {
		return c > 0
	}
	if sa.record.BuildNumber != sb.record.BuildNumber {
		return sa.record.BuildNumber > sb.record.BuildNumber
	}
	// an update leaves an identical installed package alone
	if sa.evr == sb.evr {
		if ia, ib := p.isInstalled(a), p.isInstalled(b); ia != ib {
			return ia
		}
	}
	if sa.record.Timestamp != sb.record.Timestamp {
		return sa.record.Timestamp > sb.record.Timestamp
	}
	return a < b
}

// priority returns the repository priority of a candidate. An installed
// solvable ranks with the best channel holding the same build, so that an
// identical copy never wins over it on priority alone.
func (s *Solver) priority(id Id) int {
	p := s.pool
	if !p.isInstalled(id) {
		return p.repos[p.solvables[id].repo].priority
	}
	if s.installedPriority == nil {
		s.installedPriority = s.computeInstalledPriority()
	}
	return s.installedPriority[id]
}

type buildKey struct {
	name, evr   Id
	buildNumber uint64
}

func (s *Solver) computeInstalledPriority() map[Id]int {
	p := s.pool
	best := map[buildKey]int{}
	for id := 1; id < len(p.solvables); id++ {
		sv := &p.solvables[id]
		if sv.deleted || p.isInstalled(Id(id)) {
			continue
		}
		k := buildKey{sv.name, sv.evr, sv.record.BuildNumber}
		if prio, ok := best[k]; !ok || p.repos[sv.repo].priority > prio {
			best[k] = p.repos[sv.repo].priority
		}
	}
	out := map[Id]int{}
	for _, id := range p.repos[p.installed].solvables {
		sv := &p.solvables[id]
		prio, ok := best[buildKey{sv.name, sv.evr, sv.record.BuildNumber}]
		if !ok || prio < p.repos[p.installed].priority {
			prio = p.repos[p.installed].priority
		}
		out[id] = prio
	}
	return out
}
