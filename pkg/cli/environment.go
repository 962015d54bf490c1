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
Package cli describes the operating environment for the pkgsolv CLI.

Every setting is read from a PKGSOLV_* environment variable first, and can
be overridden by the matching persistent flag.
*/
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/pkgsolv/internal/solver"
	"github.com/rancher-sandbox/pkgsolv/pkg/solvpath"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// Debug indicates whether or not pkgsolv is running in Debug mode.
	Debug bool
	// NoColors disables colorized output.
	NoColors bool
	// NoEmojis disables emojis in output.
	NoEmojis bool
	// ChannelsFile is the path to the channels file.
	ChannelsFile string
	// Prefix is the environment the packages are resolved against.
	Prefix string
	// Verbosity is the level of the solver diagnostics, logged at debug level.
	Verbosity string
	// Timeout bounds a single resolution. Zero means no limit.
	Timeout time.Duration
	// MetricsFile receives the Prometheus metrics of the run when set.
	MetricsFile string
}

// New returns the settings taken from the environment.
func New() *EnvSettings {
	env := &EnvSettings{
		ChannelsFile: envOr("PKGSOLV_CHANNELS", solvpath.ChannelsFile()),
		Prefix:       envOr("PKGSOLV_PREFIX", envOr("CONDA_PREFIX", "")),
		Verbosity:    envOr("PKGSOLV_VERBOSITY", solver.VerbosityNone.String()),
		MetricsFile:  os.Getenv("PKGSOLV_METRICS_FILE"),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("PKGSOLV_DEBUG"))
	env.NoColors, _ = strconv.ParseBool(os.Getenv("PKGSOLV_NO_COLORS"))
	env.NoEmojis, _ = strconv.ParseBool(os.Getenv("PKGSOLV_NO_EMOJIS"))
	env.Timeout, _ = time.ParseDuration(os.Getenv("PKGSOLV_TIMEOUT"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "nocolor", s.NoColors, "disable colorized output")
	fs.BoolVar(&s.NoEmojis, "noemoji", s.NoEmojis, "disable emojis in output")
	fs.StringVar(&s.ChannelsFile, "channels-config", s.ChannelsFile, "path to the file containing channel names and locations")
	fs.StringVarP(&s.Prefix, "prefix", "p", s.Prefix, "path to the environment to resolve against")
	fs.StringVar(&s.Verbosity, "solver-verbosity", s.Verbosity, "solver diagnostics level: none, low, medium, extreme")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "time limit of a resolution, 0 for no limit")
	fs.StringVar(&s.MetricsFile, "metrics-file", s.MetricsFile, "write the metrics of the run to this file")
}

// EnvVars returns the environment as it is seen by pkgsolv.
func (s *EnvSettings) EnvVars() map[string]string {
	return map[string]string{
		"PKGSOLV_DEBUG":        fmt.Sprint(s.Debug),
		"PKGSOLV_NO_COLORS":    fmt.Sprint(s.NoColors),
		"PKGSOLV_NO_EMOJIS":    fmt.Sprint(s.NoEmojis),
		"PKGSOLV_CHANNELS":     s.ChannelsFile,
		"PKGSOLV_PREFIX":       s.Prefix,
		"PKGSOLV_VERBOSITY":    s.Verbosity,
		"PKGSOLV_TIMEOUT":      s.Timeout.String(),
		"PKGSOLV_METRICS_FILE": s.MetricsFile,

		"PKGSOLV_CACHE_HOME":  solvpath.CachePath(""),
		"PKGSOLV_CONFIG_HOME": solvpath.ConfigPath(""),
		"PKGSOLV_DATA_HOME":   solvpath.DataPath(""),
	}
}

// SolverVerbosity parses Verbosity. Debug mode raises an unset level to low.
func (s *EnvSettings) SolverVerbosity() (solver.Verbosity, error) {
	v, err := solver.ParseVerbosity(s.Verbosity)
	if err != nil {
		return solver.VerbosityNone, err
	}
	if s.Debug && v == solver.VerbosityNone {
		v = solver.VerbosityLow
	}
	return v, nil
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
