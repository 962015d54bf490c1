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

// Install is the action for adding packages to an environment.
//
// It provides the implementation of 'pkgsolv install'.
type Install struct {
	// ForceReinstall replaces installed packages matching a request by their
	// identical channel copy.
	ForceReinstall bool
	// Freeze locks every installed package instead of letting the solver
	// update or remove it to satisfy the request.
	Freeze bool

	// Config stores the configuration so it can be retrieved and used again
	Config *Configuration
}

// NewInstall creates a new Install object with the given configuration.
func NewInstall(cfg *Configuration) *Install {
	return &Install{
		Config: cfg,
	}
}

// Run computes the plan installing specs.
//
// Every spec becomes a request for one package satisfying it. Packages
// already installed are kept when possible, and nothing is installed that
// neither a request nor a kept package depends on.
func (i *Install) Run(ctx context.Context, specs []string) (*Plan, error) {
	mss, err := parseRequests(specs)
	if err != nil {
		return nil, err
	}
	return i.Config.resolve(ctx, func(p *solver.Pool, q *solver.Queue) error {
		requested := map[string]bool{}
		for k, ms := range mss {
			id, err := p.InternMatchSpec(specs[k])
			if err != nil {
				return invalidArgs{errors.Wrapf(err, "invalid request %q", specs[k])}
			}
			q.Push(id, solver.JobInstall|solver.JobSolvableProvides)
			if ms.HasExactName() {
				requested[ms.Name] = true
			}
			if i.ForceReinstall {
				if err := i.pushReinstall(p, q, ms); err != nil {
					return err
				}
			}
		}
		return keepInstalled(p, q, i.Config.Pinned, requested, i.Freeze)
	})
}

// pushReinstall requests the channel copy of every installed package
// matching ms.
func (i *Install) pushReinstall(p *solver.Pool, q *solver.Queue, ms *matchspec.MatchSpec) error {
	installed, err := installedSolvables(p)
	if err != nil {
		return err
	}
	copies, err := channelCopies(p, i.Config)
	if err != nil {
		return err
	}
	for _, s := range installed {
		rec := s.Record()
		if !ms.Matches(rec) {
			continue
		}
		c, ok := copies[rec.GetFingerPrint()]
		if !ok {
			i.Config.logger().Warnf("cannot reinstall %s: no channel provides it", rec)
			continue
		}
		q.Push(c.ID(), solver.JobInstall|solver.JobSolvable)
	}
	return nil
}

// channelCopies indexes the channel solvables by fingerprint. The first
// channel wins.
func channelCopies(p *solver.Pool, cfg *Configuration) (map[string]solver.Solvable, error) {
	copies := map[string]solver.Solvable{}
	for _, c := range cfg.Channels {
		r, err := p.RepoByName(c.Name)
		if err != nil {
			return nil, err
		}
		ss, err := r.Solvables()
		if err != nil {
			return nil, err
		}
		for _, s := range ss {
			fp := s.Record().GetFingerPrint()
			if _, ok := copies[fp]; !ok {
				copies[fp] = s
			}
		}
	}
	return copies, nil
}
