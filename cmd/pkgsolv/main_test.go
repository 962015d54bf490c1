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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/pkgsolv/pkg/cli"
)

// cmdTestCase describes a test case run against the root command.
type cmdTestCase struct {
	name      string
	cmd       string
	wantError bool
	// contains lists strings the output must hold
	contains []string
	// excludes lists strings the output must not hold
	excludes []string
	// Number of repeats (in case a feature was previously flaky and the test checks
	// it's now stably producing identical results). 0 means test is run exactly once.
	repeat int
}

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		for i := 0; i <= tt.repeat; i++ {
			t.Run(tt.name, func(t *testing.T) {
				defer resetEnv()()

				t.Logf("running cmd (attempt %d): %s", i+1, tt.cmd)
				_, out, err := executeCommandC(tt.cmd)
				if tt.wantError {
					assert.Error(t, err, out)
				} else {
					assert.NoError(t, err, out)
				}
				for _, s := range tt.contains {
					assert.Contains(t, out, s)
				}
				for _, s := range tt.excludes {
					assert.NotContains(t, out, s)
				}
			})
		}
	}
}

func executeCommandC(cmd string) (*cobra.Command, string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	root, err := newRootCmd(buf, buf, args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()
	return c, buf.String(), err
}

func resetEnv() func() {
	origEnv := os.Environ()
	noColor := color.NoColor
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
		color.NoColor = noColor
	}
}

// copyPrefix copies the test environment into a temporary directory, as
// reading it takes a lock file.
func copyPrefix(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	meta := filepath.Join(dir, "conda-meta")
	require.NoError(t, os.MkdirAll(meta, 0755))

	src := filepath.Join("testdata", "prefix", "conda-meta")
	entries, err := ioutil.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		b, err := ioutil.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, ioutil.WriteFile(filepath.Join(meta, e.Name()), b, 0644))
	}
	return dir
}

// globalFlags points a command at the test channels and a copy of the test
// environment.
func globalFlags(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("--channels-config testdata/channels.yaml --prefix %s --noemoji --nocolor", copyPrefix(t))
}
