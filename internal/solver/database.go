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

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
)

// whatProvides indexes the live solvables of a pool by 2 keys: the base
// fingerprint (package name), and the fingerprint (name-version-build). It
// also caches, per interned dependency, the solvables that satisfy it.
//
// Solvables sharing a base fingerprint exclude each other: only one of
// them can be installed.
//
// The index is a snapshot: it records the content generation of the pool it
// was built from, and is stale as soon as a repository changes.
type whatProvides struct {
	pool       *Pool
	generation uint64

	byName        map[Id][]Id     // name -> solvables, in id order
	byFingerprint map[string][]Id // name-version-build -> solvables, in id order
	providers     map[Id][]Id     // dependency -> solvables, in id order
}

func newWhatProvides(p *Pool) *whatProvides {
	wp := &whatProvides{
		pool:          p,
		generation:    p.contentGeneration,
		byName:        map[Id][]Id{},
		byFingerprint: map[string][]Id{},
		providers:     map[Id][]Id{},
	}
	for i := 1; i < len(p.solvables); i++ {
		s := &p.solvables[i]
		if s.deleted {
			continue
		}
		wp.byName[s.name] = append(wp.byName[s.name], Id(i))
		fp := s.record.GetFingerPrint()
		wp.byFingerprint[fp] = append(wp.byFingerprint[fp], Id(i))
	}
	wp.debugPrint()
	return wp
}

// whatProvides returns the solvables satisfying the dependency dep, in id
// order.
func (wp *whatProvides) whatProvides(dep Id) []Id {
	if ids, ok := wp.providers[dep]; ok {
		return ids
	}
	ms := wp.pool.dependency(dep)
	if ms == nil {
		return nil
	}

	ids := []Id{}
	for _, id := range wp.named(ms) {
		s := &wp.pool.solvables[id]
		if ms.MatchesParsed(&s.record, s.version) {
			ids = append(ids, id)
		}
	}
	wp.providers[dep] = ids
	return ids
}

// named returns the solvables whose name satisfies the name part of ms, in
// id order.
func (wp *whatProvides) named(ms *matchspec.MatchSpec) []Id {
	if ms.HasExactName() {
		if name, ok := wp.pool.lookup(String(ms.Name)); ok {
			return wp.byName[name]
		}
		return nil
	}
	var ids []Id
	for _, same := range wp.byName {
		if ms.MatchesName(wp.pool.solvables[same[0]].record.Name) {
			ids = append(ids, same...)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sameName returns the solvables sharing the name of id, including id.
func (wp *whatProvides) sameName(id Id) []Id {
	return wp.byName[wp.pool.solvables[id].name]
}

// names returns the interned names with at least one solvable, sorted.
func (wp *whatProvides) names() []Id {
	names := make([]Id, 0, len(wp.byName))
	for name := range wp.byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (wp *whatProvides) debugPrint() {
	if wp.pool.verbosity < VerbosityExtreme {
		return
	}
	wp.pool.debugf(VerbosityExtreme, "printing whatprovides index")
	for _, name := range wp.names() {
		for _, id := range wp.byName[name] {
			wp.pool.debugf(VerbosityExtreme, "%s: solvable %d %s", wp.pool.Describe(name), id,
				wp.pool.solvables[id].record.GetFingerPrint())
		}
	}
}
