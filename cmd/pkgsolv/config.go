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
	"context"
	"encoding/json"
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/internal/version"
	"github.com/rancher-sandbox/pkgsolv/pkg/action"
	"github.com/rancher-sandbox/pkgsolv/pkg/eyecandy"
	"github.com/rancher-sandbox/pkgsolv/pkg/prefix"
	"github.com/rancher-sandbox/pkgsolv/pkg/repo"
	"github.com/rancher-sandbox/pkgsolv/pkg/virtual"
)

// cmdContext returns the context the command runs under.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadChannelsFile loads the configured channels file, checking that this
// binary can read it.
func loadChannelsFile() (*repo.File, error) {
	path := settings.ChannelsFile
	f, err := repo.LoadFile(path)
	if isNotExist(err) || (err == nil && len(f.Channels) == 0) {
		return nil, errors.New("no channels configured")
	}
	if err != nil {
		return nil, err
	}
	if f.Requires != "" {
		ok, err := version.Satisfies(f.Requires)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid requires %q in %s", f.Requires, path)
		}
		if !ok {
			return nil, errors.Errorf("%s requires pkgsolv %s, this is %s", path, f.Requires, version.GetVersion())
		}
	}
	return f, nil
}

// loadChannels loads the records of every configured channel.
func loadChannels(ctx context.Context) ([]*repo.Channel, error) {
	f, err := loadChannelsFile()
	if err != nil {
		return nil, err
	}
	return repo.LoadChannels(ctx, f.Channels)
}

// loadInstalled loads the records of the configured prefix. No prefix is an
// empty environment.
func loadInstalled(logger log.Logger) ([]pkg.PackageRecord, error) {
	if settings.Prefix == "" {
		logger.Debugf("no prefix set, resolving against an empty environment")
		return []pkg.PackageRecord{}, nil
	}
	return prefix.Load(settings.Prefix)
}

// loadConfiguration fills cfg with the channels, the environment and the
// host the resolution runs against.
func loadConfiguration(ctx context.Context, cfg *action.Configuration, logger log.Logger, errOut io.Writer) error {
	channels, err := loadChannels(ctx)
	if err != nil {
		return err
	}
	installed, err := loadInstalled(logger)
	if err != nil {
		return err
	}
	virt, err := virtual.Detect()
	if err != nil {
		return err
	}
	verbosity, err := settings.SolverVerbosity()
	if err != nil {
		return err
	}

	cfg.Channels = channels
	cfg.Installed = installed
	cfg.Virtual = virt
	cfg.Subdirs = []string{virtual.CurrentSubdir(), "noarch"}
	cfg.Logger = newDiagnosticsLogger(errOut)
	cfg.Verbosity = verbosity
	cfg.Timeout = settings.Timeout
	return nil
}

// writePlan prints plan in the requested format.
func writePlan(logger log.Logger, plan *action.Plan, outfmt action.OutputMode) error {
	out, err := plan.FormatOutput(outfmt, settings.NoEmojis)
	if err != nil {
		return err
	}
	// Get an io.Writer compliant logger instance at the info level.
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	if _, err := wInfo.Write([]byte(out)); err != nil {
		return err
	}
	if outfmt == action.Table && len(plan.Changes()) > 0 {
		logger.Info(eyecandy.ESPrint(settings.NoEmojis, "Done! :clapping_hands:"))
	}
	return nil
}

// writeData prints v as JSON or YAML.
func writeData(logger log.Logger, v interface{}, outfmt action.OutputMode) error {
	var out []byte
	var err error
	switch outfmt {
	case action.JSON:
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	case action.YAML:
		out, err = yaml.Marshal(v)
	default:
		return errors.Errorf("unknown output mode %q", outfmt)
	}
	if err != nil {
		return err
	}
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	_, err = wInfo.Write(out)
	return err
}
