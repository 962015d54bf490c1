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

// Package virtual describes the host as a set of virtual packages, so that
// records can depend on the operating system, the C library or the CUDA
// driver like on any other package.
package virtual

import (
	"os"
	"regexp"
	"runtime"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
)

// RepoName is the name of the repository holding the virtual packages.
const RepoName = "virtual"

// Names of the virtual packages.
const (
	Unix     = "__unix"
	Win      = "__win"
	Linux    = "__linux"
	Osx      = "__osx"
	Glibc    = "__glibc"
	Cuda     = "__cuda"
	Archspec = "__archspec"
)

// Package is a virtual package of the host.
type Package struct {
	Name    string
	Version string
	Build   string
}

// Record converts the package into a record that can be added to a pool.
func (p Package) Record() pkg.PackageRecord {
	return pkg.PackageRecord{
		Name:    p.Name,
		Version: p.Version,
		Build:   p.Build,
		Subdir:  CurrentSubdir(),
		Channel: "@",
	}
}

// Records converts every package of pkgs.
func Records(pkgs []Package) []pkg.PackageRecord {
	recs := make([]pkg.PackageRecord, 0, len(pkgs))
	for _, p := range pkgs {
		recs = append(recs, p.Record())
	}
	return recs
}

// Detect returns the virtual packages of the host. Each version can be
// overridden with a CONDA_OVERRIDE_<NAME> variable; setting one to the empty
// string removes the package.
func Detect() ([]Package, error) {
	pkgs := []Package{}
	if runtime.GOOS == "windows" {
		pkgs = append(pkgs, Package{Name: Win, Version: "0", Build: "0"})
	} else {
		pkgs = append(pkgs, Package{Name: Unix, Version: "0", Build: "0"})
	}

	host, err := detectHost()
	if err != nil {
		return nil, err
	}
	pkgs = append(pkgs, host...)

	if v, ok := override("CUDA"); ok && v != "" {
		pkgs = append(pkgs, Package{Name: Cuda, Version: v, Build: "0"})
	}

	arch := archName()
	if v, ok := override("ARCHSPEC"); ok {
		arch = v
	}
	if arch != "" {
		pkgs = append(pkgs, Package{Name: Archspec, Version: "1", Build: arch})
	}
	return pkgs, nil
}

// withOverride applies the CONDA_OVERRIDE_<key> variable to a detected
// version. The package is dropped when the result is empty.
func withOverride(pkgs []Package, key, name, detected string) []Package {
	if v, ok := override(key); ok {
		detected = v
	}
	if detected == "" {
		return pkgs
	}
	return append(pkgs, Package{Name: name, Version: detected, Build: "0"})
}

func override(key string) (string, bool) {
	return os.LookupEnv("CONDA_OVERRIDE_" + key)
}

var releaseRe = regexp.MustCompile(`^\d+(\.\d+)*`)

// releaseVersion keeps the numeric head of a kernel release, as in
// `5.15.0` for `5.15.0-76-generic`.
func releaseVersion(release string) string {
	return releaseRe.FindString(release)
}

// CurrentSubdir returns the channel subdirectory of the host, such as
// `linux-64`.
func CurrentSubdir() string {
	return subdirFor(runtime.GOOS, runtime.GOARCH)
}

var platforms = map[string]string{
	"linux":   "linux",
	"darwin":  "osx",
	"windows": "win",
	"freebsd": "freebsd",
}

var arches = map[string]string{
	"amd64":   "64",
	"386":     "32",
	"arm64":   "aarch64",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
	"arm":     "armv7l",
}

func subdirFor(goos, goarch string) string {
	platform, ok := platforms[goos]
	if !ok {
		return "unknown"
	}
	arch, ok := arches[goarch]
	if !ok {
		return "unknown"
	}
	if arch == "aarch64" && (platform == "osx" || platform == "win") {
		arch = "arm64"
	}
	return platform + "-" + arch
}

// archName maps the Go architecture to the name used by archspec.
func archName() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		if runtime.GOOS == "darwin" {
			return "arm64"
		}
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}
