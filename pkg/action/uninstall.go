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
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
)

// Uninstall is the action for removing packages from an environment.
//
// It provides the implementation of 'pkgsolv remove'.
type Uninstall struct {
	// Prune also removes the dependencies only the removed packages need,
	// when the environment records which packages were requested.
	Prune bool

	// Config stores the configuration so it can be retrieved and used again
	Config *Configuration
}

// NewUninstall creates a new Uninstall object with the given configuration.
func NewUninstall(cfg *Configuration) *Uninstall {
	return &Uninstall{
		Prune:  true,
		Config: cfg,
	}
}

// Run computes the plan removing the installed packages named by names.
// Packages depending on them are removed too, unless another provider can
// take their place.
func (u *Uninstall) Run(ctx context.Context, names []string) (*Plan, error) {
	if len(names) == 0 {
		return nil, invalidArgs{errors.New("no package requested")}
	}
	return u.Config.resolve(ctx, func(p *solver.Pool, q *solver.Queue) error {
		installed, err := installedNames(p)
		if err != nil {
			return err
		}
		present := map[string]bool{}
		for _, name := range installed {
			present[name] = true
		}

		except := map[string]bool{}
		for _, name := range names {
			if !present[name] {
				return invalidArgs{errors.Errorf("package %s is not installed", name)}
			}
			q.Push(p.InternString(name), solver.JobErase|solver.JobSolvableName)
			except[name] = true
		}
		if u.Prune {
			for _, name := range Orphans(u.Config.Installed, names) {
				u.Config.logger().Debugf("%s is only needed by removed packages", name)
				except[name] = true
			}
		}
		return keepInstalled(p, q, u.Config.Pinned, except, false)
	})
}

// Orphans returns, sorted, the installed packages that came in as
// dependencies and are only reachable through the dependencies of removed.
// Packages installed on request are never orphans. When no record tells
// whether it was requested, every package is taken as requested and
// nothing is returned.
func Orphans(installed []pkg.PackageRecord, removed []string) []string {
	byName := map[string]*pkg.PackageRecord{}
	known := false
	for k := range installed {
		byName[installed[k].Name] = &installed[k]
		if installed[k].Requested() {
			known = true
		}
	}
	orphans := []string{}
	if !known {
		return orphans
	}
	gone := map[string]bool{}
	for _, name := range removed {
		gone[name] = true
	}

	// everything the removed packages pull in
	candidates := reachable(byName, removed, gone)

	// minus what the remaining requested packages still pull in
	roots := []string{}
	for name, rec := range byName {
		if !gone[name] && (!candidates[name] || rec.Requested()) {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	kept := reachable(byName, roots, gone)

	for name := range candidates {
		if !kept[name] && !gone[name] && !byName[name].Requested() {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// reachable walks the installed dependencies from roots, not entering
// stop. Roots are not part of the result unless reached again.
func reachable(byName map[string]*pkg.PackageRecord, roots []string, stop map[string]bool) map[string]bool {
	seen := map[string]bool{}
	queue := append([]string(nil), roots...)
	for len(queue) > 0 {
		rec, ok := byName[queue[0]]
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, dep := range rec.Depends {
			ms, err := matchspec.Parse(dep)
			if err != nil || !ms.HasExactName() {
				continue
			}
			if seen[ms.Name] || stop[ms.Name] {
				continue
			}
			if _, ok := byName[ms.Name]; ok {
				seen[ms.Name] = true
				queue = append(queue, ms.Name)
			}
		}
	}
	return seen
}
