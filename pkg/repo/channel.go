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
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

// IndexFileName is the name of the index file inside a channel subdirectory.
const IndexFileName = "repodata.json"

// Channel is the set of records loaded for one configured channel.
type Channel struct {
	Name     string
	Priority int
	Records  []pkg.PackageRecord
}

// LoadChannels loads the records of every entry concurrently. The result
// keeps the order of entries. The first error cancels the remaining loads.
func LoadChannels(ctx context.Context, entries []*Entry) ([]*Channel, error) {
	channels := make([]*Channel, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			c, err := loadChannel(ctx, e)
			if err != nil {
				return errors.Wrapf(err, "channel %q", e.Name)
			}
			channels[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return channels, nil
}

func loadChannel(ctx context.Context, e *Entry) (*Channel, error) {
	c := &Channel{Name: e.Name, Priority: e.Priority}
	for _, p := range e.Paths {
		files, err := indexFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			idx, err := LoadIndexFile(f)
			if err != nil {
				return nil, err
			}
			for _, rec := range idx.Records() {
				if rec.Channel == "" {
					rec.Channel = e.Name
				}
				c.Records = append(c.Records, rec)
			}
		}
	}
	return c, nil
}

// indexFiles expands a channel path. A directory stands for a channel
// layout, with one index per subdirectory.
func indexFiles(p string) ([]string, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{p}, nil
	}
	files, err := filepath.Glob(filepath.Join(p, "*", IndexFileName))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no %s found under %s", IndexFileName, p)
	}
	// Glob returns names in lexical order
	return files, nil
}
