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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

var mock = pkg.NewPackageRecordMock

func describeOps(ops []Operation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.Replaced != nil {
			out = append(out, fmt.Sprintf("%s %s -> %s", op.Kind, op.Replaced, op.Solvable))
		} else {
			out = append(out, fmt.Sprintf("%s %s", op.Kind, op.Solvable))
		}
	}
	return out
}

type job struct {
	spec  string
	flags JobFlags
}

func pushJobs(t *testing.T, p *Pool, jobs []job) *Queue {
	q := &Queue{}
	for _, j := range jobs {
		var id Id
		switch j.flags & jobSelectMask {
		case JobSolvableName:
			id = p.InternString(j.spec)
		default:
			var err error
			id, err = p.InternMatchSpec(j.spec)
			require.NoError(t, err)
		}
		q.Push(id, j.flags)
	}
	return q
}

// solve runs jobs against the world and returns the operations.
func solve(t *testing.T, p *Pool, q *Queue) ([]string, Stats, error) {
	s, err := p.CreateSolver()
	require.NoError(t, err)
	defer s.Release()

	if err := s.Solve(q); err != nil {
		return nil, Stats{}, err
	}
	tr, err := s.CreateTransaction()
	require.NoError(t, err)
	ops, err := tr.SolvableOperations()
	require.NoError(t, err)
	stats, err := tr.Stats()
	require.NoError(t, err)
	return describeOps(ops), stats, nil
}

func TestSolver(t *testing.T) {

	for _, tcase := range []struct {
		name      string
		installed []pkg.PackageRecord
		channel   []pkg.PackageRecord
		priority  int
		jobs      []job
		ops       []string
		problems  []string
	}{
		{
			name: "empty world",
			ops:  []string{},
		},
		{
			name: "install a pkg and dep, finding highest version",
			channel: Records(
				mock("python", "3.9", 0),
				mock("python", "3.10", 0),
				mock("numpy", "1.24", 0, "python >=3.9"),
			),
			jobs: []job{{"numpy", JobInstall | JobSolvableProvides}},
			ops:  []string{"install python-3.10-h0", "install numpy-1.24-h0"},
		},
		{
			name: "install a pkg and dep, finding matching version",
			channel: Records(
				mock("myawesomedep", "2.1.100", 0),
				mock("myawesomedep", "0.1.100", 0),
				mock("wantedbaz", "1.0.0", 0, "myawesomedep 0.1.*"),
			),
			jobs: []job{{"wantedbaz", JobInstall | JobSolvableProvides}},
			ops:  []string{"install myawesomedep-0.1.100-h0", "install wantedbaz-1.0.0-h0"},
		},
		{
			name:      "update package",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "2.0", 0)),
			jobs:      []job{{"foo", JobUpdate | JobSolvableProvides}},
			ops:       []string{"upgrade foo-1.0-h0 -> foo-2.0-h0"},
		},
		{
			name:      "update to a higher build number",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "1.0", 1)),
			jobs:      []job{{"foo", JobUpdate | JobSolvableProvides}},
			ops:       []string{"upgrade foo-1.0-h0 -> foo-1.0-h1"},
		},
		{
			name:      "update with nothing newer",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "1.0", 0)),
			jobs:      []job{{"foo", JobUpdate | JobSolvableProvides}},
			ops:       []string{"ignore foo-1.0-h0"},
		},
		{
			name:      "update with nothing newer in a preferred channel",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "1.0", 0)),
			priority:  10,
			jobs:      []job{{"foo", JobUpdate | JobSolvableName}},
			ops:       []string{"ignore foo-1.0-h0"},
		},
		{
			name:      "update to a newer build in a preferred channel",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "1.0", 0), mock("foo", "1.0", 1)),
			priority:  10,
			jobs:      []job{{"foo", JobUpdate | JobSolvableName}},
			ops:       []string{"upgrade foo-1.0-h0 -> foo-1.0-h1"},
		},
		{
			name:      "install kept with a preferred channel",
			installed: Records(mock("python", "3.9", 0)),
			channel:   Records(mock("python", "3.9", 0), mock("six", "1.16", 0, "python")),
			priority:  10,
			jobs:      []job{{"six", JobInstall | JobSolvableProvides}},
			ops:       []string{"install six-1.16-h0", "ignore python-3.9-h0"},
		},
		{
			name:      "remove package nothing asks for",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("bar", "1.0", 0)),
			ops:       []string{"remove foo-1.0-h0"},
		},
		{
			name:      "install keeps the installed version",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "1.0", 0), mock("foo", "2.0", 0)),
			jobs:      []job{{"foo", JobInstall | JobSolvableProvides}},
			ops:       []string{"ignore foo-1.0-h0"},
		},
		{
			name:      "downgrade",
			installed: Records(mock("foo", "2.0", 0)),
			channel:   Records(mock("foo", "1.0", 0), mock("foo", "2.0", 0)),
			jobs:      []job{{"foo <2", JobInstall | JobSolvableProvides}},
			ops:       []string{"downgrade foo-2.0-h0 -> foo-1.0-h0"},
		},
		{
			name:      "change build string",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(pkg.NewPackageRecord("foo", "1.0", "hxyz", 0, "noarch", nil, nil)),
			jobs:      []job{{"foo=1.0=hxyz", JobInstall | JobSolvableProvides}},
			ops:       []string{"change foo-1.0-h0 -> foo-1.0-hxyz"},
		},
		{
			name: "install a dependency chain in order",
			channel: Records(
				mock("app", "1.0", 0, "lib"),
				mock("lib", "1.0", 0, "base"),
				mock("base", "1.0", 0),
			),
			jobs: []job{{"app", JobInstall | JobSolvableProvides}},
			ops:  []string{"install base-1.0-h0", "install lib-1.0-h0", "install app-1.0-h0"},
		},
		{
			name: "install several looped deps",
			channel: Records(
				mock("wantedfoo", "1.0.0", 0, "wantedbar"),
				mock("wantedbar", "1.0.0", 0, "wantedbaz"),
				mock("wantedbaz", "1.0.0", 0, "wantedfoo"),
			),
			jobs: []job{{"wantedfoo", JobInstall | JobSolvableProvides}},
			ops: []string{
				"install wantedfoo-1.0.0-h0",
				"install wantedbaz-1.0.0-h0",
				"install wantedbar-1.0.0-h0",
			},
		},
		{
			name:      "removals come before installs",
			installed: Records(mock("old", "1.0", 0)),
			channel:   Records(mock("new", "1.0", 0)),
			jobs:      []job{{"new", JobInstall | JobSolvableProvides}},
			ops:       []string{"remove old-1.0-h0", "install new-1.0-h0"},
		},
		{
			name: "constrains exclude versions",
			channel: Records(
				pkg.NewPackageRecord("foo", "1.0", "h0", 0, "noarch", nil, []string{"bar <2"}),
				mock("bar", "1.0", 0),
				mock("bar", "2.0", 0),
			),
			jobs: []job{
				{"foo", JobInstall | JobSolvableProvides},
				{"bar", JobInstall | JobSolvableProvides},
			},
			ops: []string{"install foo-1.0-h0", "install bar-1.0-h0"},
		},
		{
			name: "two versions of the same package",
			channel: Records(
				mock("python", "3.9", 0),
				mock("python", "3.10", 0),
			),
			jobs: []job{
				{"python=3.9", JobInstall | JobSolvableProvides},
				{"python=3.10", JobInstall | JobSolvableProvides},
			},
			problems: []string{"cannot install both python-3.9-h0 and python-3.10-h0"},
		},
		{
			name:     "nothing provides the request",
			channel:  Records(mock("numpy", "1.24", 0)),
			jobs:     []job{{"numpy >=3", JobInstall | JobSolvableProvides}},
			problems: []string{"nothing provides requested numpy >=3"},
		},
		{
			name: "nothing provides a dependency",
			channel: Records(
				mock("python", "3.10", 0),
				mock("numpy", "1.24", 0, "python >=4"),
			),
			jobs:     []job{{"numpy", JobInstall | JobSolvableProvides}},
			problems: []string{"nothing provides python >=4 needed by numpy-1.24-h0"},
		},
		{
			name: "dependency that can't be installed",
			channel: Records(
				mock("a", "1.0", 0, "b"),
				mock("b", "1.0", 0, "c >=2"),
				mock("c", "1.0", 0),
			),
			jobs: []job{{"a", JobInstall | JobSolvableProvides}},
			problems: []string{
				"package a-1.0-h0 requires b, but none of the providers can be installed",
				"nothing provides c >=2 needed by b-1.0-h0",
			},
		},
		{
			name:      "lock conflicting with an install",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "2.0", 0), mock("bar", "1.0", 0, "foo >=2")),
			jobs: []job{
				{"bar", JobInstall | JobSolvableProvides},
				{"foo", JobLock | JobSolvableName},
			},
			problems: []string{"the following requests conflict with each other: install bar, lock foo"},
		},
		{
			name:      "weak lock conflicting with an install is dropped",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "2.0", 0), mock("bar", "1.0", 0, "foo >=2")),
			jobs: []job{
				{"bar", JobInstall | JobSolvableProvides},
				{"foo", JobLock | JobSolvableName | JobWeak},
			},
			ops: []string{"upgrade foo-1.0-h0 -> foo-2.0-h0", "install bar-1.0-h0"},
		},
		{
			name:      "lock keeps an installed package",
			installed: Records(mock("foo", "1.0", 0)),
			channel:   Records(mock("foo", "2.0", 0)),
			jobs:      []job{{"foo", JobLock | JobSolvableName}},
			ops:       []string{"ignore foo-1.0-h0"},
		},
		{
			name:      "erase a package and what depends on it",
			installed: Records(mock("foo", "1.0", 0), mock("bar", "1.0", 0, "foo")),
			jobs: []job{
				{"foo", JobErase | JobSolvableName},
				{"bar", JobInstall | JobSolvableName | JobWeak},
			},
			ops: []string{"remove foo-1.0-h0", "remove bar-1.0-h0"},
		},
		{
			name:      "erase conflicting with an install",
			installed: Records(mock("foo", "1.0", 0)),
			jobs: []job{
				{"foo", JobInstall | JobSolvableProvides},
				{"foo", JobErase | JobSolvableName},
			},
			problems: []string{"the following requests conflict with each other: install foo, erase foo"},
		},
		{
			name: "track features are avoided",
			channel: Records(
				mock("foo", "1.0", 0),
				&pkg.PackageRecord{Name: "foo", Version: "2.0", Build: "mkl_0", TrackFeatures: []string{"mkl"}},
			),
			jobs: []job{{"foo", JobInstall | JobSolvableProvides}},
			ops:  []string{"install foo-1.0-h0"},
		},
		{
			name: "newer timestamp wins on equal builds",
			channel: Records(
				&pkg.PackageRecord{Name: "foo", Version: "1.0", Build: "a", Timestamp: 10},
				&pkg.PackageRecord{Name: "foo", Version: "1.0", Build: "b", Timestamp: 20},
			),
			jobs: []job{{"foo", JobInstall | JobSolvableProvides}},
			ops:  []string{"install foo-1.0-b"},
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			p, err := BuildWorldMock(tcase.installed, tcase.channel)
			require.NoError(t, err)
			defer p.Close()
			if tcase.priority != 0 {
				r, err := p.RepoByName("channel-0")
				require.NoError(t, err)
				require.NoError(t, r.SetPriority(tcase.priority))
			}

			ops, _, err := solve(t, p, pushJobs(t, p, tcase.jobs))
			if tcase.problems != nil {
				var serr *SolveError
				require.True(t, errors.As(err, &serr), "expected a SolveError, got %v", err)
				is.Equal(tcase.problems, serr.Problems)
				return
			}
			require.NoError(t, err)
			if len(tcase.ops) == 0 {
				is.Empty(ops)
				return
			}
			is.Equal(tcase.ops, ops)
		})
	}
}

func TestSolverDeterminism(t *testing.T) {
	channel := Records(
		mock("python", "3.9", 0),
		mock("python", "3.10", 0),
		mock("pip", "23.0", 0, "python >=3.7"),
		mock("numpy", "1.24", 0, "python >=3.9"),
		mock("numpy", "1.24", 1, "python >=3.9"),
		mock("scipy", "1.10", 0, "numpy >=1.20", "python"),
	)
	installed := Records(mock("python", "3.9", 0), mock("six", "1.16", 0))

	var first []string
	for i := 0; i < 3; i++ {
		p, err := BuildWorldMock(installed, channel)
		require.NoError(t, err)
		q := pushJobs(t, p, []job{
			{"scipy", JobInstall | JobSolvableProvides},
			{"pip", JobInstall | JobSolvableProvides},
		})
		ops, _, err := solve(t, p, q)
		require.NoError(t, err)
		p.Close()
		if i == 0 {
			first = ops
			continue
		}
		assert.Equal(t, first, ops)
	}
	assert.Equal(t, []string{
		"remove six-1.16-h0",
		"install pip-23.0-h0",
		"install numpy-1.24-h1",
		"install scipy-1.10-h0",
		"ignore python-3.9-h0",
	}, first)
}

func TestTransactionCompleteness(t *testing.T) {
	is := assert.New(t)
	installed := Records(
		mock("keep", "1.0", 0),
		mock("drop", "1.0", 0),
		mock("up", "1.0", 0),
	)
	channel := Records(
		mock("keep", "1.0", 0),
		mock("up", "2.0", 0),
		mock("fresh", "1.0", 0, "up >=2"),
	)
	p, err := BuildWorldMock(installed, channel)
	require.NoError(t, err)
	defer p.Close()

	q := pushJobs(t, p, []job{
		{"keep", JobInstall | JobSolvableProvides},
		{"fresh", JobInstall | JobSolvableProvides},
	})
	ops, stats, err := solve(t, p, q)
	require.NoError(t, err)

	is.Equal([]string{
		"remove drop-1.0-h0",
		"upgrade up-1.0-h0 -> up-2.0-h0",
		"install fresh-1.0-h0",
		"ignore keep-1.0-h0",
	}, ops)
	is.Equal(Stats{Install: 1, Upgrade: 1, Remove: 1, Ignore: 1}, stats)
}

func TestPrefixOperationCount(t *testing.T) {
	is := assert.New(t)
	p, err := BuildWorldMock(
		Records(mock("foo", "1.0", 0), mock("bar", "1.0", 0)),
		Records(mock("foo", "1.0", 0), mock("baz", "1.0", 0)),
	)
	require.NoError(t, err)
	defer p.Close()

	// reinstall foo from the channel, install baz, remove bar
	channel, err := p.RepoByName("channel-0")
	require.NoError(t, err)
	solvables, err := channel.Solvables()
	require.NoError(t, err)

	q := &Queue{}
	q.Push(solvables[0].ID(), JobInstall|JobSolvable)
	q.Push(p.InternString("baz"), JobInstall|JobSolvableName)

	s, err := p.CreateSolver()
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, s.Solve(q))
	tr, err := s.CreateTransaction()
	require.NoError(t, err)

	ops, err := tr.SolvableOperations()
	require.NoError(t, err)
	is.Equal([]string{
		"remove bar-1.0-h0",
		"reinstall foo-1.0-h0 -> foo-1.0-h0",
		"install baz-1.0-h0",
	}, describeOps(ops))

	count, err := tr.PrefixOperationCount()
	is.NoError(err)
	is.Equal(4, count)
}

func TestManyVersions(t *testing.T) {
	var records []pkg.PackageRecord
	for i := 1; i <= 40; i++ {
		records = append(records, *mock("foo", fmt.Sprintf("%d.0", i), 0))
	}

	for _, tcase := range []struct {
		name    string
		jobs    []job
		ops     []string
		wantErr bool
	}{
		{
			name: "newest",
			jobs: []job{{"foo", JobInstall | JobSolvableProvides}},
			ops:  []string{"install foo-40.0-h0"},
		},
		{
			name: "exact",
			jobs: []job{{"foo ==7.0", JobInstall | JobSolvableProvides}},
			ops:  []string{"install foo-7.0-h0"},
		},
		{
			name: "two exact versions",
			jobs: []job{
				{"foo ==7.0", JobInstall | JobSolvableProvides},
				{"foo ==8.0", JobInstall | JobSolvableProvides},
			},
			wantErr: true,
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			p, err := BuildWorldMock(nil, records)
			require.NoError(t, err)
			defer p.Close()

			ops, _, err := solve(t, p, pushJobs(t, p, tcase.jobs))
			if tcase.wantErr {
				var serr *SolveError
				is.True(errors.As(err, &serr))
				return
			}
			is.NoError(err)
			is.Equal(tcase.ops, ops)
		})
	}
}

func TestPreferences(t *testing.T) {
	is := assert.New(t)
	p := NewPool()
	defer p.Close()

	low, err := p.CreateRepo("low")
	require.NoError(t, err)
	high, err := p.CreateRepo("high")
	require.NoError(t, err)
	require.NoError(t, low.AddRecords(Records(mock("foo", "2.0", 0))))
	require.NoError(t, high.AddRecords(Records(mock("foo", "1.0", 0))))
	require.NoError(t, high.SetPriority(10))
	require.NoError(t, p.CreateWhatProvides())

	ops, _, err := solve(t, p, pushJobs(t, p, []job{{"foo", JobInstall | JobSolvableProvides}}))
	is.NoError(err)
	is.Equal([]string{"install foo-1.0-h0"}, ops)

	// favoring beats priority
	lowSolvables, err := low.Solvables()
	require.NoError(t, err)
	q := pushJobs(t, p, []job{{"foo", JobInstall | JobSolvableProvides}})
	q.Push(lowSolvables[0].ID(), JobFavor|JobSolvable)
	ops, _, err = solve(t, p, q)
	is.NoError(err)
	is.Equal([]string{"install foo-2.0-h0"}, ops)

	// disfavoring the whole repo
	q = pushJobs(t, p, []job{{"foo", JobInstall | JobSolvableProvides}})
	q.Push(high.ID(), JobDisfavor|JobSolvableRepo)
	ops, _, err = solve(t, p, q)
	is.NoError(err)
	is.Equal([]string{"install foo-2.0-h0"}, ops)
}

func TestLifecycle(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		p := NewPool()
		defer p.Close()
		_, err := p.CreateSolver()
		assert.Equal(t, ErrNoIndex, err)
	})

	t.Run("stale index", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil, Records(mock("foo", "1.0", 0)))
		require.NoError(t, err)
		defer p.Close()

		r, err := p.CreateRepo("late")
		require.NoError(t, err)
		require.NoError(t, r.AddRecords(Records(mock("bar", "1.0", 0))))
		_, err = p.CreateSolver()
		is.Equal(ErrStaleIndex, err)

		require.NoError(t, p.CreateWhatProvides())
		s, err := p.CreateSolver()
		require.NoError(t, err)

		// rebuilt after the solver was created
		require.NoError(t, r.Delete())
		require.NoError(t, p.CreateWhatProvides())
		err = s.Solve(&Queue{})
		is.True(errors.Is(err, ErrStaleIndex))
		is.Contains(err.Error(), "index rebuilt after solver creation")
		s.Release()
	})

	t.Run("repositories changed after the solver was created", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil, Records(mock("foo", "1.0", 0)))
		require.NoError(t, err)
		defer p.Close()

		s, err := p.CreateSolver()
		require.NoError(t, err)
		defer s.Release()

		r, err := p.CreateRepo("late")
		require.NoError(t, err)
		require.NoError(t, r.AddRecords(Records(mock("bar", "1.0", 0))))
		err = s.Solve(&Queue{})
		is.True(errors.Is(err, ErrStaleIndex))
		is.Contains(err.Error(), "repositories changed since it was built")
	})

	t.Run("solvable of a deleted repository", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil)
		require.NoError(t, err)
		defer p.Close()

		r, err := p.CreateRepo("gone")
		require.NoError(t, err)
		require.NoError(t, r.AddRecords(Records(mock("a", "1", 0))))
		solvables, err := r.Solvables()
		require.NoError(t, err)
		require.Len(t, solvables, 1)
		is.Equal("a-1-h0", solvables[0].String())

		require.NoError(t, r.Delete())
		is.Panics(func() { _ = solvables[0].String() })
		is.Panics(func() { _ = solvables[0].Record() })
	})

	t.Run("one solver at a time", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil)
		require.NoError(t, err)
		defer p.Close()

		s, err := p.CreateSolver()
		require.NoError(t, err)
		_, err = p.CreateSolver()
		is.Equal(ErrSolverActive, err)
		s.Release()
		s.Release()
		s2, err := p.CreateSolver()
		is.NoError(err)
		s2.Release()
	})

	t.Run("solve once", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil, Records(mock("foo", "1.0", 0)))
		require.NoError(t, err)
		defer p.Close()

		s, err := p.CreateSolver()
		require.NoError(t, err)
		defer s.Release()

		_, err = s.CreateTransaction()
		is.Equal(ErrNotSolved, err)
		is.NoError(s.Solve(&Queue{}))
		is.Equal(ErrAlreadySolved, s.Solve(&Queue{}))
	})

	t.Run("failed solve has no transaction", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil)
		require.NoError(t, err)
		defer p.Close()

		s, err := p.CreateSolver()
		require.NoError(t, err)
		defer s.Release()
		is.Error(s.Solve(pushJobs(t, p, []job{{"missing", JobInstall | JobSolvableProvides}})))
		_, err = s.CreateTransaction()
		is.Equal(ErrNotSolved, err)
	})

	t.Run("transaction after release", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil, Records(mock("foo", "1.0", 0)))
		require.NoError(t, err)
		defer p.Close()

		s, err := p.CreateSolver()
		require.NoError(t, err)
		require.NoError(t, s.Solve(pushJobs(t, p, []job{{"foo", JobInstall | JobSolvableProvides}})))
		tr, err := s.CreateTransaction()
		require.NoError(t, err)
		s.Release()

		_, err = tr.SolvableOperations()
		is.True(errors.Is(err, ErrStaleHandle))
		_, err = tr.Stats()
		is.True(errors.Is(err, ErrStaleHandle))
		_, err = tr.PrefixOperationCount()
		is.True(errors.Is(err, ErrStaleHandle))
		is.True(errors.Is(s.Solve(&Queue{}), ErrStaleHandle))
	})

	t.Run("closed pool", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(nil, Records(mock("foo", "1.0", 0)))
		require.NoError(t, err)
		r, err := p.RepoByName("channel-0")
		require.NoError(t, err)
		solvables, err := r.Solvables()
		require.NoError(t, err)

		p.Close()
		p.Close()

		is.Equal(ErrStaleHandle, r.AddRecords(nil))
		_, err = r.Solvables()
		is.Equal(ErrStaleHandle, err)
		_, err = p.CreateRepo("again")
		is.Equal(ErrStaleHandle, err)
		_, err = p.CreateSolver()
		is.Equal(ErrStaleHandle, err)
		is.Panics(func() { solvables[0].Record() })
	})

	t.Run("deleted repo", func(t *testing.T) {
		is := assert.New(t)
		p, err := BuildWorldMock(Records(mock("foo", "1.0", 0)), Records(mock("foo", "2.0", 0)))
		require.NoError(t, err)
		defer p.Close()

		r, err := p.RepoByName("channel-0")
		require.NoError(t, err)
		require.NoError(t, r.Delete())
		is.True(errors.Is(r.AddRecords(nil), ErrStaleHandle))
		require.NoError(t, p.CreateWhatProvides())

		ops, _, err := solve(t, p, pushJobs(t, p, []job{{"foo", JobUpdate | JobSolvableProvides}}))
		is.NoError(err)
		is.Equal([]string{"ignore foo-1.0-h0"}, ops)
	})
}

func TestIntern(t *testing.T) {
	is := assert.New(t)
	p := NewPool()
	defer p.Close()

	name := p.InternString("numpy")
	is.Equal(name, p.InternString("numpy"))
	is.Equal(name, p.Intern(String("numpy")))

	vb := p.InternVersionBuild("1.24", "py39_0")
	is.Equal(vb, p.Intern(VersionBuild{Version: "1.24", Build: "py39_0"}))
	is.NotEqual(vb, p.InternVersionBuild("1.24", "py310_0"))

	dep, err := p.InternMatchSpec("numpy >=1.20")
	is.NoError(err)
	again, err := p.InternMatchSpec("numpy>=1.20")
	is.NoError(err)
	is.Equal(dep, again)
	is.NotEqual(name, dep)
	is.Equal("numpy >=1.20", p.Describe(dep))

	entities := len(p.entities)
	p.InternString("numpy")
	_, _ = p.InternMatchSpec("numpy >= 1.20")
	is.Equal(entities, len(p.entities))

	_, err = p.InternMatchSpec("numpy >=")
	is.Error(err)

	is.PanicsWithValue("solver: interning a Dependency without a Spec", func() {
		p.Intern(Dependency{})
	})
}

func TestQueue(t *testing.T) {
	is := assert.New(t)
	p := NewPool()
	defer p.Close()

	q := &Queue{}
	is.Equal(0, q.Len())
	name := p.InternString("numpy")
	q.Push(name, JobInstall|JobSolvableName)
	q.Push(name, JobErase|JobSolvableName|JobWeak)
	is.Equal(2, q.Len())
	is.Equal(Job{Id: name, Flags: JobInstall | JobSolvableName}, q.At(0))
	is.Equal("erase|name|weak", q.At(1).Flags.String())

	jobs := q.Jobs()
	q.Clear()
	is.Equal(0, q.Len())
	is.Len(jobs, 2)

	q.Push(name, JobUpdate|JobSolvableAll)
	is.Equal("update|all", q.At(0).Flags.String())
}

func TestAddRecordsErrors(t *testing.T) {
	for _, tcase := range []struct {
		name       string
		record     *pkg.PackageRecord
		expression string
	}{
		{
			name:       "bad dependency",
			record:     mock("bar", "1.0", 0, "numpy >="),
			expression: "numpy >=",
		},
		{
			name:       "bad constraint",
			record:     pkg.NewPackageRecord("bar", "1.0", "h0", 0, "noarch", nil, []string{"numpy 1..0"}),
			expression: "numpy 1..0",
		},
		{
			name:       "bad version",
			record:     mock("bar", "1..0", 0),
			expression: "1..0",
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			p := NewPool()
			defer p.Close()
			r, err := p.CreateRepo("channel")
			require.NoError(t, err)

			err = r.AddRecords(Records(mock("foo", "1.0", 0), tcase.record))
			var rerr *RecordError
			require.True(t, errors.As(err, &rerr))
			is.Equal(tcase.record.GetFingerPrint(), rerr.Record)
			is.Equal(tcase.expression, rerr.Expression)

			// nothing of the batch was added
			solvables, err := r.Solvables()
			is.NoError(err)
			is.Empty(solvables)
		})
	}
}

func TestDebugCallback(t *testing.T) {
	is := assert.New(t)
	var got []string
	p1 := NewPool()
	defer p1.Close()
	p1.SetDebugCallback(func(level Verbosity, msg string) {
		got = append(got, msg)
	})
	p1.SetDebugLevel(VerbosityLow)

	p2 := NewPool()
	defer p2.Close()
	_, err := p2.CreateRepo("other")
	require.NoError(t, err)
	is.Empty(got)

	_, err = p1.CreateRepo("mine")
	require.NoError(t, err)
	is.Equal([]string{`created repo "mine"`}, got)

	r, ok := p1.Installed()
	is.False(ok)
	is.Equal(Repo{}, r)

	// nothing is reported at VerbosityNone
	p1.SetDebugLevel(VerbosityNone)
	require.NoError(t, p1.CreateWhatProvides())
	is.Len(got, 1)
}

func TestParseVerbosity(t *testing.T) {
	is := assert.New(t)
	v, err := ParseVerbosity("medium")
	is.NoError(err)
	is.Equal(VerbosityMedium, v)
	_, err = ParseVerbosity("loud")
	is.Error(err)
}
