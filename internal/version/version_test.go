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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	defer func(v, m string) { version, metadata = v, m }(version, metadata)

	is := assert.New(t)
	for _, tcase := range []struct {
		version, metadata string
		expected          string
	}{
		{"v0.1.0", "", "v0.1.0"},
		{"0.2.0", "", "v0.2.0"},
		{"v1.0.0-rc.1", "abc", "v1.0.0-rc.1+abc"},
		{"devel", "", "devel"},
	} {
		version, metadata = tcase.version, tcase.metadata
		is.Equal(tcase.expected, GetVersion())
	}
}

func TestSatisfies(t *testing.T) {
	defer func(v string) { version = v }(version)
	version = "v0.3.1"

	is := assert.New(t)
	ok, err := Satisfies(">=0.3.0")
	is.NoError(err)
	is.True(ok)

	ok, err = Satisfies("^1")
	is.NoError(err)
	is.False(ok)

	_, err = Satisfies("not a constraint")
	is.Error(err)
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, "", info.GoVersion)
	assert.Equal(t, GetVersion(), info.Version)
}
