//go:build darwin
// +build darwin

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
	"golang.org/x/sys/unix"
)

func detectHost() ([]Package, error) {
	// older releases lack kern.osproductversion; the package is then
	// only present through the override
	v, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		v = ""
	}
	return withOverride(nil, "OSX", Osx, releaseVersion(v)), nil
}
