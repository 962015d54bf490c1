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
)

// how deep explanations follow unsatisfiable dependencies
const maxExplainDepth = 3

type problems struct {
	lines []string
	seen  map[string]bool
}

func (ps *problems) add(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if ps.seen[line] {
		return
	}
	ps.seen[line] = true
	ps.lines = append(ps.lines, line)
}

// explain describes why the failing jobs can't be satisfied together. It
// always returns at least one line.
func (s *Solver) explain(failing []int) []string {
	ps := &problems{seen: map[string]bool{}}
	visited := map[Id]bool{}

	var requested []int
	for _, j := range failing {
		js := s.jobs[j]
		switch js.job.Flags.verb() {
		case JobInstall, JobUpdate:
			if len(js.selection) == 0 {
				ps.add("nothing provides requested %s", s.describeSelection(js.job))
				continue
			}
			requested = append(requested, j)
			if _, ok := s.firstInstallable(js.selection); !ok {
				for _, id := range s.policy(js.selection) {
					s.explainSolvable(ps, id, 0, visited)
				}
			}
		}
	}

	for a := 0; a < len(requested); a++ {
		for b := a + 1; b < len(requested); b++ {
			ca, okA := s.firstInstallable(s.jobs[requested[a]].selection)
			cb, okB := s.firstInstallable(s.jobs[requested[b]].selection)
			if okA && okB && ca != cb && !s.installableTogether(ca, cb) {
				ps.add("cannot install both %s and %s", s.fingerprint(ca), s.fingerprint(cb))
			}
		}
	}

	if len(ps.lines) == 0 {
		descs := make([]string, 0, len(failing))
		for _, j := range failing {
			descs = append(descs, s.describeJob(s.jobs[j]))
		}
		ps.add("the following requests conflict with each other: %s", strings.Join(descs, ", "))
	}
	return ps.lines
}

func (s *Solver) explainSolvable(ps *problems, id Id, depth int, visited map[Id]bool) {
	if visited[id] || s.installableAlone(id) {
		return
	}
	visited[id] = true
	sv := &s.pool.solvables[id]
	fp := sv.record.GetFingerPrint()

	found := false
	for _, dep := range sv.deps {
		providers := s.index.whatProvides(dep)
		if len(providers) == 0 {
			ps.add("nothing provides %s needed by %s", s.pool.Describe(dep), fp)
			found = true
			continue
		}
		if _, ok := s.firstInstallable(providers); ok {
			continue
		}
		ps.add("package %s requires %s, but none of the providers can be installed", fp, s.pool.Describe(dep))
		found = true
		if depth < maxExplainDepth {
			for _, provider := range providers {
				s.explainSolvable(ps, provider, depth+1, visited)
			}
		}
	}
	if !found {
		ps.add("package %s has conflicting requirements", fp)
	}
}

// installableAlone reports whether id can be installed when no job is
// active.
func (s *Solver) installableAlone(id Id) bool {
	if ok, cached := s.installable[id]; cached {
		return ok
	}
	s.g.Assume(s.lit(id))
	ok := s.g.Solve() == 1
	s.installable[id] = ok
	return ok
}

func (s *Solver) installableTogether(a, b Id) bool {
	s.g.Assume(s.lit(a), s.lit(b))
	return s.g.Solve() == 1
}

// firstInstallable returns the most preferred candidate installable on its
// own.
func (s *Solver) firstInstallable(candidates []Id) (Id, bool) {
	for _, id := range s.policy(candidates) {
		if s.installableAlone(id) {
			return id, true
		}
	}
	return 0, false
}

func (s *Solver) fingerprint(id Id) string {
	return s.pool.solvables[id].record.GetFingerPrint()
}

func (s *Solver) describeSelection(job Job) string {
	p := s.pool
	switch job.Flags.selection() {
	case JobSolvable:
		if job.Id > 0 && int(job.Id) < len(p.solvables) {
			return p.solvables[job.Id].record.GetFingerPrint()
		}
	case JobSolvableName, JobSolvableProvides:
		return p.Describe(job.Id)
	case JobSolvableRepo:
		if i := int(job.Id) - 1; i >= 0 && i < len(p.repos) {
			return "repo " + p.repos[i].name
		}
	case JobSolvableAll:
		return "all packages"
	}
	return fmt.Sprintf("<unknown id %d>", job.Id)
}

func (s *Solver) describeJob(js jobState) string {
	verb := strings.SplitN(js.job.Flags.String(), "|", 2)[0]
	return verb + " " + s.describeSelection(js.job)
}
