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

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
)

// Upgrade is the action for updating installed packages.
//
// It provides the implementation of 'pkgsolv update'.
type Upgrade struct {
	// All updates every installed package that isn't pinned.
	All bool

	// Config stores the configuration so it can be retrieved and used again
	Config *Configuration
}

// NewUpgrade creates a new Upgrade object with the given configuration.
func NewUpgrade(cfg *Configuration) *Upgrade {
	return &Upgrade{
		Config: cfg,
	}
}

// Run computes the plan updating the installed packages matching specs to
// their newest version allowed by the rest of the environment.
func (u *Upgrade) Run(ctx context.Context, specs []string) (*Plan, error) {
	var mss []*matchspec.MatchSpec
	if !u.All || len(specs) > 0 {
		var err error
		if mss, err = parseRequests(specs); err != nil {
			return nil, err
		}
	}
	return u.Config.resolve(ctx, func(p *solver.Pool, q *solver.Queue) error {
		names, err := installedNames(p)
		if err != nil {
			return err
		}
		installed := map[string]bool{}
		for _, name := range names {
			installed[name] = true
		}

		requested := map[string]bool{}
		for k, ms := range mss {
			if !ms.HasExactName() {
				return invalidArgs{errors.Errorf("cannot update %q: a package name is required", specs[k])}
			}
			if !installed[ms.Name] {
				return invalidArgs{errors.Errorf("package %s is not installed", ms.Name)}
			}
			id, err := p.InternMatchSpec(specs[k])
			if err != nil {
				return invalidArgs{errors.Wrapf(err, "invalid request %q", specs[k])}
			}
			q.Push(id, solver.JobUpdate|solver.JobSolvableProvides)
			requested[ms.Name] = true
		}

		if u.All {
			pinned := map[string]bool{}
			for _, name := range u.Config.Pinned {
				pinned[name] = true
			}
			for _, name := range names {
				if requested[name] || pinned[name] {
					continue
				}
				q.Push(p.InternString(name), solver.JobUpdate|solver.JobSolvableName)
				requested[name] = true
			}
		}
		return keepInstalled(p, q, u.Config.Pinned, requested, false)
	})
}
