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

	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/action"
	"github.com/rancher-sandbox/pkgsolv/pkg/eyecandy"
)

var removeDesc = `
This command resolves the removal of installed packages.

Packages depending on a removed one are removed too. Dependencies left without
any dependent are removed as well, unless --no-prune is given.
`

func newRemoveCmd(cfg *action.Configuration, logger log.Logger, errOut io.Writer) *cobra.Command {
	client := action.NewUninstall(cfg)
	var outfmt action.OutputMode
	var noPrune bool

	cmd := &cobra.Command{
		Use:     "remove [NAME...]",
		Aliases: []string{"uninstall", "rm"},
		Short:   "resolve the removal of packages",
		Long:    removeDesc,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			if err := loadConfiguration(ctx, cfg, logger, errOut); err != nil {
				return err
			}
			client.Prune = !noPrune
			if outfmt == action.Table {
				for _, name := range args {
					logger.Info(eyecandy.ESPrintf(settings.NoEmojis, ":fire: removing %s", name))
				}
			}
			plan, err := client.Run(ctx, args)
			if err != nil {
				return err
			}
			return writePlan(logger, plan, outfmt)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&noPrune, "no-prune", false, "keep the dependencies only needed by the removed packages")
	bindOutputFlag(cmd, &outfmt)
	return cmd
}
