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

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

// BuildWorldMock creates a pool with an installed repository holding
// installed, and one repository per channel, named channel-0, channel-1...
// The whatprovides index is built.
// Useful for testing.
func BuildWorldMock(installed []pkg.PackageRecord, channels ...[]pkg.PackageRecord) (*Pool, error) {
	p := NewPool()
	for i, records := range channels {
		r, err := p.CreateRepo(fmt.Sprintf("channel-%d", i))
		if err != nil {
			p.Close()
			return nil, err
		}
		if err := r.AddRecords(records); err != nil {
			p.Close()
			return nil, err
		}
	}
	r, err := p.CreateRepo("installed")
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := r.AddRecords(installed); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.SetInstalled(r); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.CreateWhatProvides(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Records is a helper to build a slice of records out of mocks.
func Records(recs ...*pkg.PackageRecord) []pkg.PackageRecord {
	out := make([]pkg.PackageRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r)
	}
	return out
}
