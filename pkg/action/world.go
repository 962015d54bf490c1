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
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
	"github.com/rancher-sandbox/pkgsolv/pkg/virtual"
)

// InstalledRepoName is the name of the repository holding the environment.
const InstalledRepoName = "installed"

// BuildWorld creates a pool of every package known to the configuration:
// one repository per channel, the virtual packages and the installed
// environment, and indexes it. The caller owns the pool and must close it.
func BuildWorld(cfg *Configuration) (*solver.Pool, error) {
	logger := cfg.logger()
	p := solver.NewPool()
	p.SetDebugLevel(cfg.Verbosity)
	p.SetDebugCallback(solver.LoggerCallback(logger))

	fail := func(err error) (*solver.Pool, error) {
		p.Close()
		return nil, err
	}

	// add channels to the pool
	for _, c := range cfg.Channels {
		r, err := p.CreateRepo(c.Name)
		if err != nil {
			return fail(err)
		}
		if err := r.SetPriority(c.Priority); err != nil {
			return fail(err)
		}
		recs := make([]pkg.PackageRecord, 0, len(c.Records))
		for _, rec := range c.Records {
			if cfg.acceptsSubdir(rec.Subdir) {
				recs = append(recs, rec)
			}
		}
		if err := r.AddRecords(recs); err != nil {
			return fail(errors.Wrapf(err, "channel %q", c.Name))
		}
		logger.Debugf("channel %s: %d records (priority %d)", c.Name, len(recs), c.Priority)
	}

	// add the host
	if len(cfg.Virtual) > 0 {
		r, err := p.CreateRepo(virtual.RepoName)
		if err != nil {
			return fail(err)
		}
		if err := r.AddRecords(virtual.Records(cfg.Virtual)); err != nil {
			return fail(err)
		}
	}

	// add the environment
	r, err := p.CreateRepo(InstalledRepoName)
	if err != nil {
		return fail(err)
	}
	if err := r.AddRecords(cfg.Installed); err != nil {
		return fail(errors.Wrap(err, "installed environment"))
	}
	if err := p.SetInstalled(r); err != nil {
		return fail(err)
	}

	if err := p.CreateWhatProvides(); err != nil {
		return fail(err)
	}
	cfg.Recorder.SetPoolSize(p.SolvableCount())
	return p, nil
}
