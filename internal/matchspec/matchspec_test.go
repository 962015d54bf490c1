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

package matchspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

func TestParse(t *testing.T) {
	for _, tcase := range []struct {
		name      string
		input     string
		wantName  string
		version   string // canonical version predicate, "" when absent
		build     string
		channel   string
		subdir    string
		canonical string
	}{
		{
			name:      "name only",
			input:     "numpy",
			wantName:  "numpy",
			canonical: "numpy",
		},
		{
			name:      "space separated glob",
			input:     "numpy 1.24.*",
			wantName:  "numpy",
			version:   "1.24.*",
			canonical: "numpy 1.24.*",
		},
		{
			name:      "version and build",
			input:     "numpy >=1.20,<2 py39_0",
			wantName:  "numpy",
			version:   ">=1.20,<2",
			build:     "py39_0",
			canonical: "numpy >=1.20,<2 py39_0",
		},
		{
			name:      "equals form with build",
			input:     "numpy=1.24=py39_0",
			wantName:  "numpy",
			version:   "==1.24",
			build:     "py39_0",
			canonical: "numpy ==1.24 py39_0",
		},
		{
			name:      "single equals is a prefix",
			input:     "python=3.9",
			wantName:  "python",
			version:   "3.9.*",
			canonical: "python 3.9.*",
		},
		{
			name:      "double equals is exact",
			input:     "python==3.9",
			wantName:  "python",
			version:   "==3.9",
			canonical: "python ==3.9",
		},
		{
			name:      "operators without spaces",
			input:     "numpy>=1.20,<2",
			wantName:  "numpy",
			version:   ">=1.20,<2",
			canonical: "numpy >=1.20,<2",
		},
		{
			name:      "spaces around operators",
			input:     "numpy >= 1.20 , < 2",
			wantName:  "numpy",
			version:   ">=1.20,<2",
			canonical: "numpy >=1.20,<2",
		},
		{
			name:      "bare version is exact",
			input:     "numpy 1.24",
			wantName:  "numpy",
			version:   "==1.24",
			canonical: "numpy ==1.24",
		},
		{
			name:      "star version is dropped",
			input:     "python *",
			wantName:  "python",
			canonical: "python",
		},
		{
			name:      "build without version",
			input:     "python * cpython*",
			wantName:  "python",
			build:     "cpython*",
			canonical: "python * cpython*",
		},
		{
			name:      "channel and subdir",
			input:     "conda-forge/linux-64::numpy[version='>=1.20']",
			wantName:  "numpy",
			version:   ">=1.20",
			channel:   "conda-forge",
			subdir:    "linux-64",
			canonical: "conda-forge/linux-64::numpy >=1.20",
		},
		{
			name:      "channel url",
			input:     "https://example.com/channel::numpy",
			wantName:  "numpy",
			channel:   "https://example.com/channel",
			canonical: "https://example.com/channel::numpy",
		},
		{
			name:      "bracket build overrides",
			input:     "numpy 1.24 py38_0[build=py39_0]",
			wantName:  "numpy",
			version:   "==1.24",
			build:     "py39_0",
			canonical: "numpy ==1.24 py39_0",
		},
		{
			name:      "upper case name",
			input:     "PyYAML",
			wantName:  "pyyaml",
			canonical: "pyyaml",
		},
		{
			name:      "or",
			input:     "foo 1.0|2.0.*",
			wantName:  "foo",
			version:   "==1.0|2.0.*",
			canonical: "foo ==1.0|2.0.*",
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			ms, err := Parse(tcase.input)
			require.NoError(t, err)

			is.Equal(tcase.wantName, ms.Name)
			if tcase.version == "" {
				is.Nil(ms.Version)
			} else {
				require.NotNil(t, ms.Version)
				is.Equal(tcase.version, ms.Version.String())
			}
			is.Equal(tcase.build, ms.Build)
			is.Equal(tcase.channel, ms.Channel)
			is.Equal(tcase.subdir, ms.Subdir)
			is.Equal(tcase.canonical, ms.String())

			// the canonical form parses back to itself
			again, err := Parse(ms.String())
			is.NoError(err)
			is.Equal(ms.String(), again.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, tcase := range []struct {
		name  string
		input string
	}{
		{name: "empty", input: "  "},
		{name: "missing name", input: ">=1.0"},
		{name: "missing version", input: "numpy >="},
		{name: "trailing text", input: "numpy 1.0 py_0 extra"},
		{name: "invalid version", input: "numpy 1..0"},
		{name: "unbalanced bracket", input: "numpy]"},
		{name: "unterminated quote", input: "numpy[version='1.0]"},
		{name: "bad build number", input: "numpy[build_number=x]"},
		{name: "wildcard in the middle", input: "numpy 1.*.2"},
		{name: "compatible needs two components", input: "numpy ~=1"},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			_, err := Parse(tcase.input)
			is.Error(err)
			var perr *ParseError
			if is.ErrorAs(err, &perr) {
				is.Equal(tcase.input, perr.Input)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	record := func(name, ver, build string, buildNumber uint64) *pkg.PackageRecord {
		return pkg.NewPackageRecord(name, ver, build, buildNumber, "linux-64", nil, nil)
	}

	for _, tcase := range []struct {
		name   string
		spec   string
		record *pkg.PackageRecord
		want   bool
	}{
		{name: "greater equal", spec: "python >=3.9", record: record("python", "3.10", "h0", 0), want: true},
		{name: "greater equal, older", spec: "python >=3.9", record: record("python", "3.8", "h0", 0), want: false},
		{name: "other name", spec: "python", record: record("numpy", "1.24", "h0", 0), want: false},
		{name: "glob", spec: "python 3.9.*", record: record("python", "3.9.7", "h0", 0), want: true},
		{name: "glob is component wise", spec: "python 3.1.*", record: record("python", "3.10", "h0", 0), want: false},
		{name: "prefix", spec: "python=3.9", record: record("python", "3.9.0", "h0", 0), want: true},
		{name: "exact", spec: "python==3.9", record: record("python", "3.9.0", "h0", 0), want: true},
		{name: "exact, patch", spec: "python==3.9", record: record("python", "3.9.1", "h0", 0), want: false},
		{name: "build glob", spec: "numpy=1.24=py39_*", record: record("numpy", "1.24", "py39_0", 0), want: true},
		{name: "build glob, other build", spec: "numpy=1.24=py39_*", record: record("numpy", "1.24", "py310_0", 0), want: false},
		{name: "build number", spec: "foo[build_number='>=2']", record: record("foo", "1.0", "h1", 1), want: false},
		{name: "build number, satisfied", spec: "foo[build_number='>=2']", record: record("foo", "1.0", "h2", 2), want: true},
		{name: "compatible", spec: "foo ~=1.2", record: record("foo", "1.5", "h0", 0), want: true},
		{name: "compatible, next major", spec: "foo ~=1.2", record: record("foo", "2.0", "h0", 0), want: false},
		{name: "compatible, older", spec: "foo ~=1.2", record: record("foo", "1.1", "h0", 0), want: false},
		{name: "not glob", spec: "foo !=1.2.*", record: record("foo", "1.2.3", "h0", 0), want: false},
		{name: "not glob, other", spec: "foo !=1.2.*", record: record("foo", "1.3", "h0", 0), want: true},
		{name: "or", spec: "foo 1.0|2.0", record: record("foo", "2.0", "h0", 0), want: true},
		{name: "or, none", spec: "foo 1.0|2.0", record: record("foo", "1.5", "h0", 0), want: false},
		{name: "name glob", spec: "py*", record: record("python", "3.10", "h0", 0), want: true},
		{name: "subdir", spec: "foo[subdir=noarch]", record: record("foo", "1.0", "h0", 0), want: false},
		{name: "unparseable record version", spec: "foo >=1", record: record("foo", "1..0", "h0", 0), want: false},
		{name: "unparseable record version, no predicate", spec: "foo", record: record("foo", "1..0", "h0", 0), want: true},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			ms, err := Parse(tcase.spec)
			require.NoError(t, err)
			is.Equal(tcase.want, ms.Matches(tcase.record))
		})
	}
}

func TestMatchesChannel(t *testing.T) {
	is := assert.New(t)
	ms := MustParse("conda-forge::foo")

	rec := pkg.NewPackageRecordMock("foo", "1.0", 0)
	rec.Channel = "https://conda.anaconda.org/conda-forge"
	is.True(ms.Matches(rec))

	rec.Channel = "defaults"
	is.False(ms.Matches(rec))
}
