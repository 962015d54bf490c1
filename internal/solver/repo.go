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
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// Repo is a handle to a repository owned by a Pool. The zero value is not a
// valid repository.
type Repo struct {
	pool       *Pool
	generation uint64
	index      int
}

func (r Repo) valid() error {
	if r.pool == nil {
		return ErrStaleHandle
	}
	if err := r.pool.check(r.generation); err != nil {
		return err
	}
	if r.pool.repos[r.index].deleted {
		return errors.Wrap(ErrStaleHandle, "repository was deleted")
	}
	return nil
}

func (r Repo) data() *repoData {
	if r.pool == nil {
		panic("solver: use of a zero Repo")
	}
	r.pool.mustCheck(r.generation, "repository")
	return &r.pool.repos[r.index]
}

// ID returns the id of the repository, usable with JobSolvableRepo.
func (r Repo) ID() Id { return Id(r.index + 1) }

// Name returns the name given at creation.
func (r Repo) Name() string { return r.data().name }

// Priority returns the priority of the repository.
func (r Repo) Priority() int { return r.data().priority }

// SetPriority sets the priority of the repository. Solvables of repositories
// with a higher priority are preferred.
func (r Repo) SetPriority(priority int) error {
	if err := r.valid(); err != nil {
		return err
	}
	r.pool.repos[r.index].priority = priority
	return nil
}

// AddRecords registers one solvable per record. Dependencies, constraints
// and versions are parsed and interned; if any of them is malformed a
// *RecordError is returned and none of the records is added.
func (r Repo) AddRecords(records []pkg.PackageRecord) error {
	if err := r.valid(); err != nil {
		return err
	}
	p := r.pool

	type parsed struct {
		version *version.Version
		deps    []*matchspec.MatchSpec
		cons    []*matchspec.MatchSpec
	}
	batch := make([]parsed, len(records))
	for i := range records {
		rec := &records[i]
		if rec.Name == "" {
			return newRecordError(rec, "", errors.New("missing package name"))
		}
		v, err := version.Parse(rec.Version)
		if err != nil {
			return newRecordError(rec, rec.Version, err)
		}
		batch[i].version = v
		for _, dep := range rec.Depends {
			ms, err := matchspec.Parse(dep)
			if err != nil {
				return newRecordError(rec, dep, err)
			}
			batch[i].deps = append(batch[i].deps, ms)
		}
		for _, con := range rec.Constrains {
			ms, err := matchspec.Parse(con)
			if err != nil {
				return newRecordError(rec, con, err)
			}
			batch[i].cons = append(batch[i].cons, ms)
		}
	}
	if len(p.solvables)+len(records) > maxId {
		return ErrPoolExhausted
	}

	data := &p.repos[r.index]
	for i := range records {
		s := solvable{
			record:  records[i],
			version: batch[i].version,
			repo:    r.index,
			name:    p.InternString(records[i].Name),
			evr:     p.InternVersionBuild(records[i].Version, records[i].Build),
		}
		for _, ms := range batch[i].deps {
			s.deps = append(s.deps, p.Intern(Dependency{Spec: ms}))
		}
		for _, ms := range batch[i].cons {
			s.cons = append(s.cons, p.Intern(Dependency{Spec: ms}))
		}
		id := Id(len(p.solvables))
		p.solvables = append(p.solvables, s)
		data.solvables = append(data.solvables, id)
	}
	if len(records) > 0 {
		p.contentGeneration++
	}
	p.debugf(VerbosityMedium, "added %d records to repo %q", len(records), data.name)
	return nil
}

// Delete removes the repository and its solvables from the pool, leaving
// other repositories untouched. The whatprovides index must be rebuilt
// afterwards.
func (r Repo) Delete() error {
	if err := r.valid(); err != nil {
		return err
	}
	p := r.pool
	data := &p.repos[r.index]
	for _, id := range data.solvables {
		p.solvables[id].deleted = true
	}
	data.deleted = true
	data.solvables = nil
	if p.installed == r.index {
		p.installed = -1
	}
	p.contentGeneration++
	p.debugf(VerbosityLow, "deleted repo %q", data.name)
	return nil
}

// Solvables returns the solvables of the repository in insertion order.
func (r Repo) Solvables() ([]Solvable, error) {
	if err := r.valid(); err != nil {
		return nil, err
	}
	ids := r.pool.repos[r.index].solvables
	out := make([]Solvable, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.pool.solvableHandle(id))
	}
	return out, nil
}

// Solvable is a handle to one package registered in a repository. Its
// accessors panic when the pool was closed or the repository deleted.
type Solvable struct {
	pool       *Pool
	generation uint64
	id         Id
}

func (s Solvable) data() *solvable {
	if s.pool == nil {
		panic("solver: use of a zero Solvable")
	}
	s.pool.mustCheck(s.generation, "solvable")
	d := &s.pool.solvables[s.id]
	if d.deleted || s.pool.repos[d.repo].deleted {
		panic("solver: use of a solvable of a deleted repository")
	}
	return d
}

// ID returns the id of the solvable, usable with JobSolvable.
func (s Solvable) ID() Id { return s.id }

// Record returns a copy of the record the solvable was created from.
func (s Solvable) Record() *pkg.PackageRecord {
	rec := s.data().record
	return &rec
}

// Repo returns the repository owning the solvable.
func (s Solvable) Repo() Repo {
	d := s.data()
	return Repo{pool: s.pool, generation: s.generation, index: d.repo}
}

// NameId returns the interned name of the solvable.
func (s Solvable) NameId() Id { return s.data().name }

// Installed reports whether the solvable belongs to the installed
// repository.
func (s Solvable) Installed() bool {
	s.data()
	return s.pool.isInstalled(s.id)
}

func (s Solvable) String() string {
	return s.data().record.GetFingerPrint()
}
