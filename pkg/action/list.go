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
	"sort"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

// List is the action for listing the installed packages.
//
// It provides the implementation of 'pkgsolv list'.
type List struct {
	// Filter is a match spec the listed packages must satisfy, such as
	// `py*` or `numpy >=1.20`. Empty lists everything.
	Filter string

	Config *Configuration
}

// NewList creates a new List object with the given configuration.
func NewList(cfg *Configuration) *List {
	return &List{
		Config: cfg,
	}
}

// Run returns the installed packages matching Filter, sorted by name.
func (l *List) Run() ([]pkg.PackageRecord, error) {
	var ms *matchspec.MatchSpec
	if l.Filter != "" {
		var err error
		if ms, err = matchspec.Parse(l.Filter); err != nil {
			return nil, errors.Wrapf(err, "invalid filter %q", l.Filter)
		}
	}
	res := []pkg.PackageRecord{}
	for k := range l.Config.Installed {
		if ms == nil || ms.Matches(&l.Config.Installed[k]) {
			res = append(res, l.Config.Installed[k])
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}
