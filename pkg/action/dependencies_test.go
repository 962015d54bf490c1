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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/virtual"
)

func TestDependency(t *testing.T) {
	for _, tcase := range []struct {
		name      string
		spec      string
		installed []*pkg.PackageRecord
		virtual   []virtual.Package
		pkg       string
		statuses  []DependencyStatus
		err       string
	}{
		{
			name: "newest channel package",
			spec: "numpy",
			pkg:  "numpy=1.26.0=h0",
			statuses: []DependencyStatus{
				{Spec: "python >=3.10", Status: StatusOutOfRange, Installed: "python=3.9.0=h0"},
			},
		},
		{
			name: "installed package first",
			spec: "numpy",
			installed: []*pkg.PackageRecord{
				mock("python", "3.9.0", 0),
				mock("numpy", "1.24.0", 0, "python >=3.9"),
			},
			pkg: "numpy=1.24.0=h0",
			statuses: []DependencyStatus{
				{Spec: "python >=3.9", Status: StatusInstalled, Installed: "python=3.9.0=h0"},
			},
		},
		{
			name: "available but not installed",
			spec: "requests",
			installed: []*pkg.PackageRecord{
				mock("zlib", "1.2", 0),
			},
			pkg: "requests=2.28.0=h0",
			statuses: []DependencyStatus{
				{Spec: "python", Status: StatusNotInstalled},
				{Spec: "idna", Status: StatusNotInstalled},
			},
		},
		{
			name:    "virtual package",
			spec:    "cudatoolkit",
			virtual: []virtual.Package{{Name: virtual.Cuda, Version: "12.0", Build: "0"}},
			pkg:     "cudatoolkit=11.8=h0",
			statuses: []DependencyStatus{
				{Spec: "__cuda >=11", Status: StatusInstalled, Installed: "__cuda=12.0=0"},
			},
		},
		{
			name: "missing virtual package",
			spec: "cudatoolkit",
			pkg:  "cudatoolkit=11.8=h0",
			statuses: []DependencyStatus{
				{Spec: "__cuda >=11", Status: StatusUnavailable},
			},
		},
		{
			name: "no match",
			spec: "numpy >=2",
			err:  "no package matches",
		},
		{
			name: "invalid spec",
			spec: "numpy >=",
			err:  "invalid request",
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			cfg, _ := configFixture(t, tcase.installed...)
			cfg.Virtual = tcase.virtual

			rec, statuses, err := NewDependency(cfg).Run(tcase.spec)
			if tcase.err != "" {
				require.Error(t, err)
				is.Contains(err.Error(), tcase.err)
				return
			}
			require.NoError(t, err)
			is.Equal(tcase.pkg, rec.String())
			is.Equal(tcase.statuses, statuses)
		})
	}
}

func TestDependencyList(t *testing.T) {
	is := assert.New(t)
	cfg, _ := configFixture(t)

	out, err := NewDependency(cfg).List("requests")
	is.NoError(err)
	is.Contains(out, "DEPENDENCY")
	is.Contains(out, "python=3.9.0=h0")
	is.Contains(out, StatusNotInstalled)
}

func TestList(t *testing.T) {
	for _, tcase := range []struct {
		filter string
		names  []string
		err    string
	}{
		{names: []string{"python", "six"}},
		{filter: "py*", names: []string{"python"}},
		{filter: "python >=3.10", names: []string{}},
		{filter: "python >=", err: "invalid filter"},
	} {
		t.Run(tcase.filter, func(t *testing.T) {
			is := assert.New(t)
			cfg, _ := configFixture(t)
			client := NewList(cfg)
			client.Filter = tcase.filter

			recs, err := client.Run()
			if tcase.err != "" {
				is.Error(err)
				is.Contains(err.Error(), tcase.err)
				return
			}
			is.NoError(err)
			names := []string{}
			for _, rec := range recs {
				names = append(names, rec.Name)
			}
			is.Equal(tcase.names, names)
		})
	}
}
