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

const updateDesc = `
This command resolves the update of installed packages to their newest
version compatible with the rest of the environment.

Arguments name installed packages, optionally with a version constraint such
as 'python <3.12'. With --all every installed package is updated, except the
pinned ones.
`

func newUpdateCmd(cfg *action.Configuration, logger log.Logger, errOut io.Writer) *cobra.Command {
	client := action.NewUpgrade(cfg)
	var outfmt action.OutputMode
	var pinned []string

	cmd := &cobra.Command{
		Use:     "update [SPEC...]",
		Aliases: []string{"upgrade"},
		Short:   "resolve the update of installed packages",
		Long:    updateDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			if err := loadConfiguration(ctx, cfg, logger, errOut); err != nil {
				return err
			}
			cfg.Pinned = append(cfg.Pinned, pinned...)
			if outfmt == action.Table {
				logger.Info(eyecandy.ESPrint(settings.NoEmojis, ":arrow_up: resolving updates"))
			}
			plan, err := client.Run(ctx, args)
			if err != nil {
				return err
			}
			return writePlan(logger, plan, outfmt)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&client.All, "all", false, "update every installed package")
	bindPinFlag(cmd, &pinned)
	bindOutputFlag(cmd, &outfmt)
	return cmd
}
