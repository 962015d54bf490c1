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
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// Status of a dependency against the environment.
const (
	StatusInstalled    = "installed"
	StatusOutOfRange   = "out-of-range"
	StatusNotInstalled = "not-installed"
	StatusUnavailable  = "unavailable"
)

// DependencyStatus describes one dependency of a package.
type DependencyStatus struct {
	Spec      string `json:"spec"`
	Status    string `json:"status"`
	Installed string `json:"installed,omitempty"`
}

// Dependency is the action for checking the dependencies of a package.
//
// It provides the implementation of 'pkgsolv depends'.
type Dependency struct {
	Config *Configuration
}

// NewDependency creates a new Dependency object with the given configuration.
func NewDependency(cfg *Configuration) *Dependency {
	return &Dependency{
		Config: cfg,
	}
}

// Run looks up the package matching spec, the installed one first, then the
// newest of the channels, and reports the status of each of its
// dependencies.
func (d *Dependency) Run(spec string) (*pkg.PackageRecord, []DependencyStatus, error) {
	ms, err := matchspec.Parse(spec)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid request %q", spec)
	}
	rec := d.lookup(ms)
	if rec == nil {
		return nil, nil, errors.Errorf("no package matches %s", ms)
	}

	installed := map[string]*pkg.PackageRecord{}
	for k := range d.Config.Installed {
		installed[d.Config.Installed[k].Name] = &d.Config.Installed[k]
	}

	statuses := []DependencyStatus{}
	for _, dep := range rec.Depends {
		st := DependencyStatus{Spec: dep}
		depMs, err := matchspec.Parse(dep)
		if err != nil {
			return rec, nil, errors.Wrapf(err, "package %s", rec)
		}
		inst := d.installedMatch(installed, depMs)
		if inst == nil {
			inst = d.virtualMatch(depMs)
		}
		switch {
		case inst != nil && depMs.Matches(inst):
			st.Status = StatusInstalled
			st.Installed = inst.String()
		case inst != nil:
			st.Status = StatusOutOfRange
			st.Installed = inst.String()
		case d.available(depMs):
			st.Status = StatusNotInstalled
		default:
			st.Status = StatusUnavailable
		}
		statuses = append(statuses, st)
	}
	return rec, statuses, nil
}

// List renders the dependencies of the package matching spec as a table.
func (d *Dependency) List(spec string) (string, error) {
	_, statuses, err := d.Run(spec)
	if err != nil {
		return "", err
	}
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("DEPENDENCY", "STATUS", "INSTALLED")
	for _, st := range statuses {
		table.AddRow(st.Spec, st.Status, st.Installed)
	}
	return table.String(), nil
}

func (d *Dependency) installedMatch(byName map[string]*pkg.PackageRecord, ms *matchspec.MatchSpec) *pkg.PackageRecord {
	if ms.HasExactName() {
		return byName[ms.Name]
	}
	for k := range d.Config.Installed {
		if ms.MatchesName(d.Config.Installed[k].Name) {
			return &d.Config.Installed[k]
		}
	}
	return nil
}

func (d *Dependency) available(ms *matchspec.MatchSpec) bool {
	for _, c := range d.Config.Channels {
		for k := range c.Records {
			if d.Config.acceptsSubdir(c.Records[k].Subdir) && ms.Matches(&c.Records[k]) {
				return true
			}
		}
	}
	return false
}

func (d *Dependency) virtualMatch(ms *matchspec.MatchSpec) *pkg.PackageRecord {
	for _, v := range d.Config.Virtual {
		rec := v.Record()
		if ms.Matches(&rec) {
			return &rec
		}
	}
	return nil
}

func (d *Dependency) lookup(ms *matchspec.MatchSpec) *pkg.PackageRecord {
	for k := range d.Config.Installed {
		if ms.Matches(&d.Config.Installed[k]) {
			rec := d.Config.Installed[k]
			return &rec
		}
	}
	var best *pkg.PackageRecord
	var bestVersion *version.Version
	for _, c := range d.Config.Channels {
		for k := range c.Records {
			rec := &c.Records[k]
			if !d.Config.acceptsSubdir(rec.Subdir) || !ms.Matches(rec) {
				continue
			}
			v, err := rec.ParsedVersion()
			if err != nil {
				continue
			}
			if best == nil || v.Compare(bestVersion) > 0 ||
				(v.Equal(bestVersion) && rec.BuildNumber > best.BuildNumber) {
				best, bestVersion = rec, v
			}
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
