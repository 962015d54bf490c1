//go:build linux
// +build linux

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

package virtual

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func detectHost() ([]Package, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return nil, errors.Wrap(err, "couldn't read the kernel release")
	}
	pkgs := withOverride(nil, "LINUX", Linux, releaseVersion(unix.ByteSliceToString(u.Release[:])))
	// glibc cannot be queried without cgo, only the override is honored
	pkgs = withOverride(pkgs, "GLIBC", Glibc, "")
	return pkgs, nil
}
