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

/*
Package search implements the search for packages in channels and extracts it
into a package so it can be reused and composed over.
*/
package search

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/gobwas/glob"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/action"
	"github.com/rancher-sandbox/pkgsolv/pkg/repo"
	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// Options is the struct used to search, and stores the different options to
// filter and configure the output
type Options struct {
	// Versions returns every matching record instead of the newest one per
	// name and channel.
	Versions bool
	// Devel includes development versions.
	Devel bool
	// Version is a version constraint, such as `>=1.20,<2`.
	Version      string
	MaxColWidth  uint
	OutputFormat action.OutputMode
}

// Result is a package record found in a channel.
type Result struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	Subdir  string `json:"subdir"`
	License string `json:"license,omitempty"`

	record  pkg.PackageRecord
	version *version.Version
}

// Record returns the record the result was built from.
func (r *Result) Record() pkg.PackageRecord { return r.record }

// Run searches and prints the found packages based of the filters
func (o *Options) Run(logger log.Logger, channels []*repo.Channel, args []string) error {
	res, err := o.Search(channels, args)
	if err != nil {
		return err
	}
	out, err := o.Format(res)
	if err != nil {
		return err
	}
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	_, err = wInfo.Write([]byte(out))
	return err
}

// Search returns the records of channels whose name matches one of the
// keywords, newest first for each name. A keyword holding glob characters
// is matched as a glob, others as a substring. No keyword matches every
// record.
func (o *Options) Search(channels []*repo.Channel, keywords []string) ([]*Result, error) {
	matchers, err := nameMatchers(keywords)
	if err != nil {
		return nil, err
	}
	var constraint *matchspec.VersionSpec
	if o.Version != "" {
		if constraint, err = matchspec.ParseVersionSpec(o.Version); err != nil {
			return nil, errors.Wrap(err, "an invalid version/constraint format")
		}
	}

	var res []*Result
	for _, c := range channels {
		for _, rec := range c.Records {
			if !matchesAny(matchers, rec.Name) {
				continue
			}
			v, err := rec.ParsedVersion()
			if err != nil {
				log.Debugf("skipping %s: %s", rec.GetFingerPrint(), err)
				continue
			}
			if v.IsDev() && !o.Devel {
				continue
			}
			if constraint != nil && !constraint.Matches(v) {
				continue
			}
			res = append(res, &Result{
				Name:    rec.Name,
				Version: rec.Version,
				Build:   rec.Build,
				Channel: c.Name,
				Subdir:  rec.Subdir,
				License: rec.License,
				record:  rec,
				version: v,
			})
		}
	}
	sortResults(res)
	if o.Versions {
		return res, nil
	}

	// keep the newest of each name, per channel
	data := res[:0]
	found := map[string]bool{}
	for _, r := range res {
		key := r.Channel + "::" + r.Name
		if found[key] {
			continue
		}
		found[key] = true
		data = append(data, r)
	}
	return data, nil
}

// sortResults sorts by name, then newest version, build number and
// timestamp first. Channels keep their configured order.
func sortResults(res []*Result) {
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if c := a.version.Compare(b.version); c != 0 {
			return c > 0
		}
		if a.record.BuildNumber != b.record.BuildNumber {
			return a.record.BuildNumber > b.record.BuildNumber
		}
		return a.record.Timestamp > b.record.Timestamp
	})
}

func nameMatchers(keywords []string) ([]func(string) bool, error) {
	var matchers []func(string) bool
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}
		if !strings.ContainsAny(kw, "*?[{") {
			matchers = append(matchers, func(name string) bool {
				return strings.Contains(strings.ToLower(name), kw)
			})
			continue
		}
		g, err := glob.Compile(kw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", kw)
		}
		matchers = append(matchers, func(name string) bool {
			return g.Match(strings.ToLower(name))
		})
	}
	return matchers, nil
}

func matchesAny(matchers []func(string) bool, name string) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, m := range matchers {
		if m(name) {
			return true
		}
	}
	return false
}

// Format renders the results in the output format of o.
func (o *Options) Format(res []*Result) (string, error) {
	// Initialize the array so no results returns an empty array instead of null
	if res == nil {
		res = []*Result{}
	}
	switch o.OutputFormat {
	case action.Table, "":
		if len(res) == 0 {
			return "No results found\n", nil
		}
		table := uitable.New()
		table.MaxColWidth = o.MaxColWidth
		table.AddRow("NAME", "VERSION", "BUILD", "CHANNEL", "SUBDIR")
		for _, r := range res {
			table.AddRow(r.Name, r.Version, r.Build, r.Channel, r.Subdir)
		}
		return table.String() + "\n", nil
	case action.JSON:
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	case action.YAML:
		out, err := yaml.Marshal(res)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return "", errors.Errorf("unknown output mode %q", o.OutputFormat)
}
