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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/pkgsolv/internal/metrics"
	"github.com/rancher-sandbox/pkgsolv/pkg/action"
)

var globalUsage = `Usage: pkgsolv command

Resolve package requests against channels and an installed environment, and
print the transaction that would satisfy them.

Environment variables:

| Name                  | Description                                              |
|-----------------------|----------------------------------------------------------|
| $PKGSOLV_CHANNELS     | path to the channels file                                |
| $PKGSOLV_PREFIX       | environment to resolve against (defaults to $CONDA_PREFIX) |
| $PKGSOLV_DEBUG        | enable verbose output                                    |
| $PKGSOLV_NO_COLORS    | disable colorized output                                 |
| $PKGSOLV_NO_EMOJIS    | disable emojis in output                                 |
| $PKGSOLV_VERBOSITY    | solver diagnostics level                                 |
| $PKGSOLV_TIMEOUT      | time limit of a resolution                               |
| $PKGSOLV_METRICS_FILE | file receiving the metrics of the run                    |
`

func newRootCmd(out, errOut io.Writer, args []string) (*cobra.Command, error) {
	registry := prometheus.NewRegistry()
	actionConfig := &action.Configuration{
		Recorder: metrics.NewRecorder(registry),
	}

	cmd := &cobra.Command{
		Use:          "pkgsolv",
		Short:        "A package dependency resolver",
		Long:         globalUsage,
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if settings.MetricsFile == "" {
				return nil
			}
			return errors.Wrap(prometheus.WriteToTextfile(settings.MetricsFile, registry), "couldn't write metrics")
		},
	}
	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	// the loggers depend on the flags, parse them first
	flags.ParseErrorsWhitelist.UnknownFlags = true
	err := flags.Parse(args)
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrapf(err, "failed while parsing flags for %s", args)
	}
	if settings.NoColors {
		color.NoColor = true // disable colorized output
	}
	logger := newLogger(out, errOut)

	cmd.AddCommand(
		newInstallCmd(actionConfig, logger, errOut),
		newUpdateCmd(actionConfig, logger, errOut),
		newRemoveCmd(actionConfig, logger, errOut),
		newListCmd(actionConfig, logger, errOut),
		newDependsCmd(actionConfig, logger, errOut),
		newSearchCmd(logger),
		newLintCmd(logger),
		newChannelsCmd(logger),
		newVersionCmd(logger),
	)
	return cmd, nil
}

// isNotExist reports whether err, or its cause, says a file is missing.
func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
