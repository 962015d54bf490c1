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
Package prefix reads the set of packages installed in an environment.

An environment ("prefix") records every installed package as one JSON file
under `conda-meta/`. The files are read under a shared lock so that a
concurrent writer holding the exclusive lock is never observed half way.
*/
package prefix

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

const (
	// MetaDir is the directory of a prefix holding installed records.
	MetaDir = "conda-meta"
	// LockFile is the lock taken while reading or writing MetaDir.
	LockFile = ".pkgsolv.lock"
)

// Load returns the records installed in prefix, sorted by file name. A
// prefix without a MetaDir is an empty environment.
func Load(prefix string) ([]pkg.PackageRecord, error) {
	meta, err := securejoin.SecureJoin(prefix, MetaDir)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid prefix %s", prefix)
	}
	fi, err := os.Stat(meta)
	if os.IsNotExist(err) {
		return []pkg.PackageRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, errors.Errorf("%s is not a directory", meta)
	}

	lock := flock.New(filepath.Join(meta, LockFile))
	if err := lock.RLock(); err != nil {
		return nil, errors.Wrapf(err, "couldn't lock %s", meta)
	}
	defer lock.Unlock() //nolint:errcheck

	entries, err := ioutil.ReadDir(meta)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	recs := make([]pkg.PackageRecord, 0, len(names))
	for _, name := range names {
		rec, err := loadRecord(meta, name)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func loadRecord(meta, name string) (pkg.PackageRecord, error) {
	var rec pkg.PackageRecord
	path, err := securejoin.SecureJoin(meta, name)
	if err != nil {
		return rec, err
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return rec, errors.Wrapf(err, "couldn't parse %s", path)
	}
	if rec.Name == "" || rec.Version == "" {
		return rec, errors.Errorf("%s: record without name or version", path)
	}
	if rec.FileName == "" {
		rec.FileName = strings.TrimSuffix(name, ".json")
	}
	return rec, nil
}
