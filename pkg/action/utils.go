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

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
)

// parseRequests parses the match specs given by the user.
func parseRequests(specs []string) ([]*matchspec.MatchSpec, error) {
	if len(specs) == 0 {
		return nil, invalidArgs{errors.New("no package requested")}
	}
	mss := make([]*matchspec.MatchSpec, 0, len(specs))
	for _, spec := range specs {
		ms, err := matchspec.Parse(spec)
		if err != nil {
			return nil, invalidArgs{errors.Wrapf(err, "invalid request %q", spec)}
		}
		mss = append(mss, ms)
	}
	return mss, nil
}

// installedSolvables returns the solvables of the environment in id order.
func installedSolvables(p *solver.Pool) ([]solver.Solvable, error) {
	r, ok := p.Installed()
	if !ok {
		return nil, nil
	}
	return r.Solvables()
}

// installedNames returns the names present in the environment, in id order.
func installedNames(p *solver.Pool) ([]string, error) {
	ss, err := installedSolvables(p)
	if err != nil {
		return nil, err
	}
	names := []string{}
	seen := map[string]bool{}
	for _, s := range ss {
		name := s.Record().Name
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// keepInstalled queues a job for every installed name not in except:
// pinned names (and every name when freeze is set) are locked, the others
// are kept weakly so that a request can still replace or remove them.
func keepInstalled(p *solver.Pool, q *solver.Queue, pinned []string, except map[string]bool, freeze bool) error {
	names, err := installedNames(p)
	if err != nil {
		return err
	}
	isPinned := map[string]bool{}
	for _, name := range pinned {
		isPinned[name] = true
		// pinned but absent packages stay absent
		q.Push(p.InternString(name), solver.JobLock|solver.JobSolvableName)
	}
	for _, name := range names {
		switch {
		case except[name] || isPinned[name]:
		case freeze:
			q.Push(p.InternString(name), solver.JobLock|solver.JobSolvableName)
		default:
			q.Push(p.InternString(name), solver.JobInstall|solver.JobSolvableName|solver.JobWeak)
		}
	}
	return nil
}
