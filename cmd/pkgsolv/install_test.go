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

package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallCmd(t *testing.T) {
	flags := globalFlags(t)
	tests := []cmdTestCase{
		{
			name:     "install with an upgrade of a dependency",
			cmd:      "install numpy " + flags,
			contains: []string{"resolving numpy", "install", "numpy", "1.26.0", "upgrade", "3.9.0 -> 3.10.4", "Prefix operations: 3", "Total size:", "Done!"},
		},
		{
			name:     "install with a pinned package",
			cmd:      "install numpy --pin python " + flags,
			contains: []string{"numpy", "1.24.0", "Prefix operations: 1"},
			excludes: []string{"3.10.4"},
		},
		{
			name:     "install with a version constraint",
			cmd:      "install 'numpy <1.25' " + flags,
			contains: []string{"1.24.0"},
			excludes: []string{"upgrade"},
		},
		{
			name:     "install frozen",
			cmd:      "install numpy --freeze-installed " + flags,
			contains: []string{"1.24.0"},
			excludes: []string{"3.10.4"},
		},
		{
			name:     "install already installed",
			cmd:      "install six " + flags,
			contains: []string{"All requested packages already installed"},
			excludes: []string{"Done!"},
		},
		{
			name:     "install json output",
			cmd:      "install requests -o json " + flags,
			contains: []string{`"name": "requests"`, `"name": "idna"`},
			excludes: []string{"resolving"},
		},
		{
			name:     "install yaml output",
			cmd:      "install requests -o yaml " + flags,
			contains: []string{"name: requests"},
		},
		{
			name:      "install unknown package",
			cmd:       "install nothing-such " + flags,
			wantError: true,
			contains:  []string{"nothing-such"},
		},
		{
			name:      "install invalid spec",
			cmd:       "install 'numpy >=1,' " + flags,
			wantError: true,
		},
		{
			name:      "install without arguments",
			cmd:       "install " + flags,
			wantError: true,
		},
		{
			name:      "install with an invalid output",
			cmd:       "install numpy -o xml " + flags,
			wantError: true,
			contains:  []string{"invalid output mode"},
		},
		{
			name:      "install without channels",
			cmd:       "install numpy --channels-config testdata/nothing.yaml",
			wantError: true,
			contains:  []string{"no channels configured"},
		},
		{
			name:      "install with a channels file for a newer release",
			cmd:       "install numpy --channels-config testdata/channels-future.yaml",
			wantError: true,
			contains:  []string{"requires pkgsolv >=99.0.0"},
		},
	}
	runTestCmd(t, tests)
}

func TestInstallCmdMetrics(t *testing.T) {
	defer resetEnv()()
	is := assert.New(t)

	metricsFile := filepath.Join(t.TempDir(), "pkgsolv.prom")
	_, out, err := executeCommandC("install numpy --metrics-file " + metricsFile + " " + globalFlags(t))
	require.NoError(t, err, out)

	b, err := ioutil.ReadFile(metricsFile)
	require.NoError(t, err)
	is.Contains(string(b), "pkgsolv_solve_total")
	is.Contains(string(b), `result="solved"`)
}
