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
	"math"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// Id identifies an interned value, a solvable or a repository inside one
// pool. Ids of different pools must never be mixed. 0 is never assigned.
type Id uint32

const maxId = math.MaxInt32 - 1

// Verbosity selects how much the pool reports through its debug callback.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityLow
	VerbosityMedium
	VerbosityExtreme
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityNone:
		return "none"
	case VerbosityLow:
		return "low"
	case VerbosityMedium:
		return "medium"
	case VerbosityExtreme:
		return "extreme"
	}
	return fmt.Sprintf("verbosity(%d)", int(v))
}

// ParseVerbosity parses the name of a verbosity level.
func ParseVerbosity(s string) (Verbosity, error) {
	for v := VerbosityNone; v <= VerbosityExtreme; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return VerbosityNone, errors.Errorf("unknown verbosity %q, use one of none, low, medium, extreme", s)
}

// DebugCallback receives the diagnostics of a pool.
type DebugCallback func(level Verbosity, msg string)

// LoggerCallback returns a DebugCallback writing to logger at debug level.
func LoggerCallback(logger log.Logger) DebugCallback {
	return func(level Verbosity, msg string) {
		logger.Debugf("[solver:%s] %s", level, msg)
	}
}

// Interner is a value that can be interned into a pool: String,
// VersionBuild or Dependency.
type Interner interface {
	internKey() string
}

// String is a package name, channel or any other plain string.
type String string

func (s String) internKey() string { return "s\x00" + string(s) }

// VersionBuild is the version and build string of a package.
type VersionBuild struct {
	Version string
	Build   string
}

func (vb VersionBuild) internKey() string { return "v\x00" + vb.Version + "\x00" + vb.Build }

// Dependency is a parsed dependency expression. Two expressions with the
// same canonical form intern to the same Id. Spec must not be nil.
type Dependency struct {
	Spec *matchspec.MatchSpec
}

func (d Dependency) internKey() string {
	if d.Spec == nil {
		panic("solver: interning a Dependency without a Spec")
	}
	return "d\x00" + d.Spec.String()
}

type entity struct {
	value Interner
}

type solvable struct {
	record  pkg.PackageRecord
	version *version.Version
	repo    int
	name    Id
	evr     Id
	deps    []Id
	cons    []Id
	deleted bool
}

type repoData struct {
	name      string
	priority  int
	solvables []Id
	deleted   bool
}

/*
Pool interns names, versions and dependency expressions, and owns the
repositories and the solvables registered in them.

Every handle (Repo, Solvable, Solver, Transaction) carries the generation of
the pool that produced it. Close bumps the generation, after which every
handle is rejected.

A Pool is not safe for concurrent use. Independent resolutions use
independent pools.
*/
type Pool struct {
	generation uint64
	closed     bool

	keys     map[string]Id
	entities []entity // index 0 unused

	solvables []solvable // index 0 unused
	repos     []repoData
	installed int // index in repos, -1 when unset

	// contentGeneration changes every time solvables are added or removed
	contentGeneration uint64
	index             *whatProvides

	solverActive bool

	debugCallback DebugCallback
	verbosity     Verbosity
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		generation: 1,
		keys:       map[string]Id{},
		entities:   make([]entity, 1),
		solvables:  make([]solvable, 1),
		installed:  -1,
	}
}

// Close releases everything the pool owns. Handles obtained from the pool
// are invalid afterwards. Close is idempotent.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	p.debugf(VerbosityLow, "closing pool with %d solvables", len(p.solvables)-1)
	p.closed = true
	p.generation++
	p.keys = nil
	p.entities = nil
	p.solvables = nil
	p.repos = nil
	p.index = nil
	p.solverActive = false
}

// SetDebugCallback sets the function receiving diagnostics. A nil callback
// disables them.
func (p *Pool) SetDebugCallback(cb DebugCallback) { p.debugCallback = cb }

// SetDebugLevel sets how much is reported to the debug callback. It has no
// effect on solving.
func (p *Pool) SetDebugLevel(v Verbosity) { p.verbosity = v }

func (p *Pool) debugf(level Verbosity, format string, args ...interface{}) {
	if p.debugCallback == nil || level > p.verbosity || level == VerbosityNone {
		return
	}
	p.debugCallback(level, fmt.Sprintf(format, args...))
}

func (p *Pool) check(generation uint64) error {
	if p.closed || generation != p.generation {
		return ErrStaleHandle
	}
	return nil
}

func (p *Pool) mustCheck(generation uint64, what string) {
	if err := p.check(generation); err != nil {
		panic(fmt.Sprintf("solver: %s used after its pool was closed", what))
	}
}

// Intern returns the Id of v, registering it on first use. Interning the
// same value twice returns the same Id.
func (p *Pool) Intern(v Interner) Id {
	if p.closed {
		panic("solver: Intern called on a closed pool")
	}
	key := v.internKey()
	if id, ok := p.keys[key]; ok {
		return id
	}
	if len(p.entities) >= maxId {
		panic(ErrPoolExhausted)
	}
	id := Id(len(p.entities))
	p.entities = append(p.entities, entity{value: v})
	p.keys[key] = id
	p.debugf(VerbosityExtreme, "interned %d: %q", id, key)
	return id
}

// InternString interns a plain string.
func (p *Pool) InternString(s string) Id { return p.Intern(String(s)) }

// InternVersionBuild interns a version and build string pair.
func (p *Pool) InternVersionBuild(ver, build string) Id {
	return p.Intern(VersionBuild{Version: ver, Build: build})
}

// InternMatchSpec parses and interns a dependency expression.
func (p *Pool) InternMatchSpec(spec string) (Id, error) {
	ms, err := matchspec.Parse(spec)
	if err != nil {
		return 0, err
	}
	return p.Intern(Dependency{Spec: ms}), nil
}

// lookup returns the Id of v without interning it.
func (p *Pool) lookup(v Interner) (Id, bool) {
	id, ok := p.keys[v.internKey()]
	return id, ok
}

// Value returns the interned value behind id, or nil when id is unknown.
func (p *Pool) Value(id Id) Interner {
	if p.closed || id == 0 || int(id) >= len(p.entities) {
		return nil
	}
	return p.entities[id].value
}

// Describe renders an interned value for humans.
func (p *Pool) Describe(id Id) string {
	switch v := p.Value(id).(type) {
	case String:
		return string(v)
	case VersionBuild:
		return v.Version + "-" + v.Build
	case Dependency:
		return v.Spec.String()
	}
	return fmt.Sprintf("<unknown id %d>", id)
}

func (p *Pool) dependency(id Id) *matchspec.MatchSpec {
	if d, ok := p.Value(id).(Dependency); ok {
		return d.Spec
	}
	return nil
}

// CreateRepo creates an empty repository owned by the pool.
func (p *Pool) CreateRepo(name string) (Repo, error) {
	if p.closed {
		return Repo{}, ErrStaleHandle
	}
	if len(p.repos) >= maxId {
		return Repo{}, ErrPoolExhausted
	}
	p.repos = append(p.repos, repoData{name: name})
	p.debugf(VerbosityLow, "created repo %q", name)
	return Repo{pool: p, generation: p.generation, index: len(p.repos) - 1}, nil
}

// RepoByName returns the first live repository with the given name.
func (p *Pool) RepoByName(name string) (Repo, error) {
	if p.closed {
		return Repo{}, ErrStaleHandle
	}
	for i, r := range p.repos {
		if !r.deleted && r.name == name {
			return Repo{pool: p, generation: p.generation, index: i}, nil
		}
	}
	return Repo{}, errors.Errorf("no repository named %q", name)
}

// SetInstalled marks r as the repository of the installed packages.
// Transactions diff the solution against it.
func (p *Pool) SetInstalled(r Repo) error {
	if err := r.valid(); err != nil {
		return err
	}
	if r.pool != p {
		return errors.Wrap(ErrStaleHandle, "repository belongs to another pool")
	}
	p.installed = r.index
	return nil
}

// Installed returns the repository of the installed packages, if any.
func (p *Pool) Installed() (Repo, bool) {
	if p.closed || p.installed < 0 || p.repos[p.installed].deleted {
		return Repo{}, false
	}
	return Repo{pool: p, generation: p.generation, index: p.installed}, true
}

func (p *Pool) isInstalled(id Id) bool {
	return p.installed >= 0 && p.solvables[id].repo == p.installed
}

// CreateWhatProvides (re)builds the index mapping dependencies to the
// solvables providing them. It must be called after repositories are
// populated and before creating a solver.
func (p *Pool) CreateWhatProvides() error {
	if p.closed {
		return ErrStaleHandle
	}
	p.index = newWhatProvides(p)
	p.debugf(VerbosityLow, "built whatprovides index for %d names", len(p.index.byName))
	return nil
}

// CreateSolver returns a solver bound to the current whatprovides index.
// Only one solver per pool may be active: Release it before creating
// another one.
func (p *Pool) CreateSolver() (*Solver, error) {
	switch {
	case p.closed:
		return nil, ErrStaleHandle
	case p.index == nil:
		return nil, ErrNoIndex
	case p.index.generation != p.contentGeneration:
		return nil, ErrStaleIndex
	case p.solverActive:
		return nil, ErrSolverActive
	}
	p.solverActive = true
	return newSolver(p), nil
}

// SolvableCount returns the number of live solvables in the pool.
func (p *Pool) SolvableCount() int {
	n := 0
	for id := 1; id < len(p.solvables); id++ {
		if !p.solvables[id].deleted {
			n++
		}
	}
	return n
}

func (p *Pool) solvableHandle(id Id) Solvable {
	return Solvable{pool: p, generation: p.generation, id: id}
}
