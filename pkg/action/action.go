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
	"time"

	"github.com/Masterminds/log-go"

	"github.com/rancher-sandbox/pkgsolv/internal/metrics"
	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
	"github.com/rancher-sandbox/pkgsolv/pkg/repo"
	"github.com/rancher-sandbox/pkgsolv/pkg/virtual"
)

// Timestamper is a function capable of producing a timestamp.
//
// By default, this is time.Now. This can be overridden for testing though,
// so that durations are predictable.
var Timestamper = time.Now

// Configuration is the world every action resolves against: the available
// channels, the installed environment and the host.
type Configuration struct {
	// Channels each become a repository. Records of a channel with a higher
	// Priority win over newer versions of another channel.
	Channels []*repo.Channel
	// Installed is the current environment.
	Installed []pkg.PackageRecord
	// Virtual describes the host.
	Virtual []virtual.Package
	// Pinned names stay as installed, or absent.
	Pinned []string
	// Subdirs restricts channel records to these subdirectories. Empty
	// accepts every record.
	Subdirs []string

	Logger    log.Logger
	Recorder  *metrics.Recorder
	Verbosity solver.Verbosity
	// Timeout bounds a whole resolution. Zero means no deadline besides
	// the one of the context given to Run.
	Timeout time.Duration
}

func (c *Configuration) logger() log.Logger {
	if c.Logger == nil {
		return log.Current
	}
	return c.Logger
}

func (c *Configuration) acceptsSubdir(subdir string) bool {
	if len(c.Subdirs) == 0 {
		return true
	}
	for _, s := range c.Subdirs {
		if s == subdir {
			return true
		}
	}
	return false
}
