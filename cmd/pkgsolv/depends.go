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
)

const dependsDesc = `
This command shows the dependencies of a package and whether the environment
satisfies them.

The installed package matching the spec is inspected, or the newest one of
the channels when none is installed. Each dependency is reported as:

- installed: an installed or virtual package satisfies it
- out-of-range: a package of that name is installed, in another version
- not-installed: nothing installed satisfies it, a channel does
- unavailable: nothing satisfies it
`

func newDependsCmd(cfg *action.Configuration, logger log.Logger, errOut io.Writer) *cobra.Command {
	client := action.NewDependency(cfg)
	var outfmt action.OutputMode

	cmd := &cobra.Command{
		Use:   "depends SPEC",
		Short: "show the dependencies of a package",
		Long:  dependsDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfiguration(cmdContext(cmd), cfg, logger, errOut); err != nil {
				return err
			}
			if outfmt == action.Table {
				out, err := client.List(args[0])
				if err != nil {
					return err
				}
				logger.Info(out)
				return nil
			}
			rec, statuses, err := client.Run(args[0])
			if err != nil {
				return err
			}
			return writeData(logger, struct {
				Package      string                    `json:"package"`
				Dependencies []action.DependencyStatus `json:"dependencies"`
			}{rec.String(), statuses}, outfmt)
		},
	}

	bindOutputFlag(cmd, &outfmt)
	return cmd
}
