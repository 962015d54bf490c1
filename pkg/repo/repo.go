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
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// APIVersionV1 is the v1 API version for channel files.
const APIVersionV1 = "v1"

// Entry is a configured channel: a name, a priority and the index files or
// channel directories its records are read from.
type Entry struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority,omitempty"`
	Paths    []string `yaml:"paths"`
}

// File represents the channels file
type File struct {
	APIVersion string    `yaml:"apiVersion"`
	Generated  time.Time `yaml:"generated"`
	// Requires is an optional semver constraint on the pkgsolv version
	// able to read the file.
	Requires string   `yaml:"requires,omitempty"`
	Channels []*Entry `yaml:"channels"`
}

// NewFile generates an empty channels file.
//
// Generated and APIVersion are automatically set.
func NewFile() *File {
	return &File{
		APIVersion: APIVersionV1,
		Generated:  time.Now(),
		Channels:   []*Entry{},
	}
}

// LoadFile takes a file at the given path and returns a File object.
//
// Relative channel paths are resolved against the directory holding the file.
func LoadFile(path string) (*File, error) {
	r := new(File)
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return r, errors.Wrapf(err, "couldn't load channels file (%s)", path)
	}

	if err := yaml.Unmarshal(b, r); err != nil {
		return r, errors.Wrapf(err, "couldn't parse channels file (%s)", path)
	}
	if r.APIVersion == "" {
		r.APIVersion = APIVersionV1
	}

	base := filepath.Dir(path)
	for _, e := range r.Channels {
		if e.Name == "" {
			return r, errors.Errorf("channel without a name in %s", path)
		}
		for i, p := range e.Paths {
			if !filepath.IsAbs(p) {
				e.Paths[i] = filepath.Join(base, p)
			}
		}
	}
	return r, nil
}

// Add adds one or more channel entries to the file.
func (r *File) Add(e ...*Entry) {
	r.Channels = append(r.Channels, e...)
}

// Update attempts to replace one or more channel entries in the file. If an
// entry with the same name doesn't exist in the file, it will add it.
func (r *File) Update(e ...*Entry) {
	for _, target := range e {
		r.update(target)
	}
}

func (r *File) update(e *Entry) {
	for j, channel := range r.Channels {
		if channel.Name == e.Name {
			r.Channels[j] = e
			return
		}
	}
	r.Add(e)
}

// Has returns true if the given name is already a channel name.
func (r *File) Has(name string) bool {
	return r.Get(name) != nil
}

// Get returns an entry with the given name if it exists, otherwise returns nil
func (r *File) Get(name string) *Entry {
	for _, entry := range r.Channels {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

// Remove removes the entry from the list of channels.
func (r *File) Remove(name string) bool {
	cp := []*Entry{}
	found := false
	for _, rf := range r.Channels {
		if rf == nil {
			continue
		}
		if rf.Name == name {
			found = true
			continue
		}
		cp = append(cp, rf)
	}
	r.Channels = cp
	return found
}

// WriteFile writes a channels file to the given path.
func (r *File) WriteFile(path string, perm os.FileMode) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, perm)
}
