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
Package rules contains all the rules that pkgsolv will run against a channel
index when pkgsolv lint is run.
*/
package rules

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/internal/matchspec"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/lint/support"
	"github.com/rancher-sandbox/pkgsolv/pkg/repo"
)

// entry is one record of an index with the file name it is published as.
type entry struct {
	fn  string
	rec pkg.PackageRecord
}

// Index runs the linter rules on the records of the index at
// linter.IndexPath. Dependencies may be provided by the index itself or by
// the noarch index next to it.
func Index(linter *support.Linter) {
	path := linter.IndexPath
	name := filepath.Base(path)
	idx, err := loadIndex(path)
	if !linter.RunLinterRule(support.ErrorSev, name, err) {
		return
	}

	entries := indexEntries(idx)
	providers := append([]pkg.PackageRecord(nil), idx.Records()...)
	if filepath.Base(filepath.Dir(path)) != "noarch" {
		noarch := filepath.Join(filepath.Dir(filepath.Dir(path)), "noarch", name)
		if other, err := loadIndex(noarch); err == nil {
			providers = append(providers, other.Records()...)
		}
	}

	seen := map[string]string{}
	for _, e := range entries {
		if !linter.RunLinterRule(support.ErrorSev, e.fn, validateName(e.rec)) {
			continue
		}
		versionOk := linter.RunLinterRule(support.ErrorSev, e.fn, validateVersion(e.rec))
		linter.RunLinterRule(support.ErrorSev, e.fn, validateSize(e.rec))
		linter.RunLinterRule(support.WarningSev, e.fn, validateSubdir(e.rec, idx.Info.Subdir))
		linter.RunLinterRule(support.InfoSev, e.fn, validateLicense(e.rec))
		linter.RunLinterRule(support.InfoSev, e.fn, validateChecksum(e.rec))
		if versionOk {
			linter.RunLinterRule(support.ErrorSev, e.fn, validateUnique(e, seen))
		}
		specs, ok := parseSpecs(linter, e)
		if !ok {
			continue
		}
		for _, ms := range specs {
			linter.RunLinterRule(support.WarningSev, e.fn, validateProvided(ms, providers))
		}
	}
}

func loadIndex(path string) (*repo.Index, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("index file %s does not exist", path)
		}
		return nil, err
	}
	idx, err := repo.ParseIndex(b)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse index")
	}
	return idx, nil
}

// indexEntries lists the records of both package maps, in file name order.
func indexEntries(idx *repo.Index) []entry {
	var entries []entry
	for _, m := range []map[string]pkg.PackageRecord{idx.Packages, idx.CondaPackages} {
		names := make([]string, 0, len(m))
		for fn := range m {
			names = append(names, fn)
		}
		sort.Strings(names)
		for _, fn := range names {
			entries = append(entries, entry{fn: fn, rec: m[fn]})
		}
	}
	return entries
}

// parseSpecs checks the depends and constrains of e, returning the parsed
// depends when they are all valid.
func parseSpecs(linter *support.Linter, e entry) ([]*matchspec.MatchSpec, bool) {
	ok := true
	var depends []*matchspec.MatchSpec
	for _, dep := range e.rec.Depends {
		ms, err := matchspec.Parse(dep)
		if !linter.RunLinterRule(support.ErrorSev, e.fn, wrapSpec(err, "depends", dep)) {
			ok = false
			continue
		}
		depends = append(depends, ms)
	}
	for _, c := range e.rec.Constrains {
		_, err := matchspec.Parse(c)
		linter.RunLinterRule(support.ErrorSev, e.fn, wrapSpec(err, "constrains", c))
	}
	return depends, ok
}

func wrapSpec(err error, field, spec string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "invalid %s entry %q", field, spec)
}

// validateName checks that the record has a name
func validateName(rec pkg.PackageRecord) error {
	if rec.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// validateVersion checks that the version of the record parses
func validateVersion(rec pkg.PackageRecord) error {
	if rec.Version == "" {
		return errors.New("version is required")
	}
	_, err := rec.ParsedVersion()
	return err
}

// validateSize checks that the size, when set, is positive
func validateSize(rec pkg.PackageRecord) error {
	if rec.Size < 0 {
		return errors.Errorf("size %d is negative", rec.Size)
	}
	return nil
}

// validateSubdir checks that the record belongs to the subdir of its index
func validateSubdir(rec pkg.PackageRecord, subdir string) error {
	if rec.Subdir != "" && subdir != "" && rec.Subdir != subdir {
		return errors.Errorf("subdir %q does not match the index subdir %q", rec.Subdir, subdir)
	}
	return nil
}

// validateLicense checks that a license is set
func validateLicense(rec pkg.PackageRecord) error {
	if rec.License == "" {
		return errors.New("Setting a license is recommended")
	}
	return nil
}

// validateChecksum checks that a sha256 checksum is set
func validateChecksum(rec pkg.PackageRecord) error {
	if rec.SHA256 == "" {
		return errors.New("Setting a sha256 checksum is recommended")
	}
	return nil
}

// validateUnique checks that no other entry publishes the same package in
// the same archive format
func validateUnique(e entry, seen map[string]string) error {
	fp := e.rec.GetFingerPrint()
	key := fp + filepath.Ext(e.fn)
	if other, ok := seen[key]; ok {
		return errors.Errorf("package %s is also published as %s", fp, other)
	}
	seen[key] = e.fn
	return nil
}

// validateProvided checks that some record satisfies the dependency.
// Virtual packages are provided by the host.
func validateProvided(ms *matchspec.MatchSpec, providers []pkg.PackageRecord) error {
	if strings.HasPrefix(ms.Name, "__") {
		return nil
	}
	for k := range providers {
		if ms.Matches(&providers[k]) {
			return nil
		}
	}
	return errors.Errorf("nothing in the channel provides %s", ms)
}
