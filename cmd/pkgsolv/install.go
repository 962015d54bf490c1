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
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/action"
	"github.com/rancher-sandbox/pkgsolv/pkg/eyecandy"
)

const installDesc = `
This command resolves the installation of packages into an environment.

Each argument is a match spec, such as 'numpy', 'numpy >=1.20' or
'numpy=1.26.0=h0', and requests one package satisfying it. Installed packages
are kept when possible, and updated or removed only when a request needs it.

The plan is printed; the environment itself is never modified.
`

func newInstallCmd(cfg *action.Configuration, logger log.Logger, errOut io.Writer) *cobra.Command {
	client := action.NewInstall(cfg)
	var outfmt action.OutputMode
	var pinned []string

	cmd := &cobra.Command{
		Use:   "install [SPEC...]",
		Short: "resolve the installation of packages",
		Long:  installDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			if err := loadConfiguration(ctx, cfg, logger, errOut); err != nil {
				return err
			}
			cfg.Pinned = append(cfg.Pinned, pinned...)
			if outfmt == action.Table {
				logger.Info(eyecandy.ESPrintf(settings.NoEmojis, ":mag: resolving %s", strings.Join(args, ", ")))
			}
			plan, err := client.Run(ctx, args)
			if err != nil {
				return err
			}
			return writePlan(logger, plan, outfmt)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&client.ForceReinstall, "force-reinstall", false, "reinstall the requested packages that are already installed")
	f.BoolVar(&client.Freeze, "freeze-installed", false, "do not update or remove installed packages")
	bindPinFlag(cmd, &pinned)
	bindOutputFlag(cmd, &outfmt)
	return cmd
}
