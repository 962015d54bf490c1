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

package repo

import (
	"io/ioutil"
	"sort"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

var (
	// ErrNoPackages indicates that an index has neither `packages` nor
	// `packages.conda`.
	ErrNoPackages = errors.New("no packages in index")
)

// IndexInfo holds the `info` block of an index.
type IndexInfo struct {
	Subdir string `json:"subdir,omitempty"`
}

// Index is the record index of one channel subdirectory (a repodata file).
type Index struct {
	Info            IndexInfo                    `json:"info"`
	Packages        map[string]pkg.PackageRecord `json:"packages"`
	CondaPackages   map[string]pkg.PackageRecord `json:"packages.conda,omitempty"`
	RemovedPackages []string                     `json:"removed,omitempty"`
	RepodataVersion int                          `json:"repodata_version,omitempty"`
}

// LoadIndexFile takes a file at the given path and returns an Index object.
// Both JSON and YAML documents are accepted.
func LoadIndexFile(path string) (*Index, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	i, err := loadIndex(b, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s", path)
	}
	return i, nil
}

// Records flattens the index into records ordered by file name, `packages`
// before `packages.conda`. Records lacking a subdir or file name get them
// from the index.
func (i *Index) Records() []pkg.PackageRecord {
	recs := make([]pkg.PackageRecord, 0, len(i.Packages)+len(i.CondaPackages))
	for _, m := range []map[string]pkg.PackageRecord{i.Packages, i.CondaPackages} {
		names := make([]string, 0, len(m))
		for fn := range m {
			names = append(names, fn)
		}
		sort.Strings(names)
		for _, fn := range names {
			rec := m[fn]
			if rec.FileName == "" {
				rec.FileName = fn
			}
			if rec.Subdir == "" {
				rec.Subdir = i.Info.Subdir
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

// ParseIndex decodes an index without checking its entries.
func ParseIndex(data []byte) (*Index, error) {
	i := &Index{}
	if err := yaml.Unmarshal(data, i); err != nil {
		return i, err
	}
	if i.Packages == nil && i.CondaPackages == nil {
		return i, ErrNoPackages
	}
	return i, nil
}

// loadIndex loads an index file and does minimal validity checking.
//
// The source parameter is only used for logging.
// Entries without a name or with an unparsable version are skipped.
func loadIndex(data []byte, source string) (*Index, error) {
	i, err := ParseIndex(data)
	if err != nil {
		return i, err
	}
	for _, m := range []map[string]pkg.PackageRecord{i.Packages, i.CondaPackages} {
		for fn, rec := range m {
			if rec.Name == "" {
				log.Warnf("skipping loading invalid entry %q from %s: missing name", fn, source)
				delete(m, fn)
				continue
			}
			if _, err := rec.ParsedVersion(); err != nil {
				log.Warnf("skipping loading invalid entry %q from %s: %s", fn, source, err)
				delete(m, fn)
			}
		}
	}
	return i, nil
}
