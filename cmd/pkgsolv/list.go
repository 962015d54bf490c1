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
	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/action"
)

var listHelp = `
List the packages installed in the environment.

An optional match spec filters the listing, such as 'py*' or 'numpy >=1.20'.
`

func newListCmd(cfg *action.Configuration, logger log.Logger, errOut io.Writer) *cobra.Command {
	client := action.NewList(cfg)
	var outfmt action.OutputMode
	var short bool

	cmd := &cobra.Command{
		Use:     "list [FILTER]",
		Short:   "list installed packages",
		Long:    listHelp,
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, err := loadInstalled(logger)
			if err != nil {
				return err
			}
			cfg.Installed = installed
			if len(args) > 0 {
				client.Filter = args[0]
			}
			results, err := client.Run()
			if err != nil {
				return err
			}

			if short {
				names := make([]string, 0, len(results))
				for _, res := range results {
					names = append(names, res.Name)
				}
				if outfmt != action.Table {
					return writeData(logger, names, outfmt)
				}
				for _, name := range names {
					logger.Info(name)
				}
				return nil
			}
			if outfmt != action.Table {
				return writeData(logger, newPackageList(results), outfmt)
			}
			logger.Info(packageTable(results))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&short, "short", "q", false, "output short (quiet) listing format")
	bindOutputFlag(cmd, &outfmt)
	return cmd
}

type packageElement struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	PURL    string `json:"purl"`
}

func newPackageList(records []pkg.PackageRecord) []packageElement {
	// Initialize the array so no results returns an empty array instead of null
	elements := make([]packageElement, 0, len(records))
	for k := range records {
		r := &records[k]
		elements = append(elements, packageElement{
			Name:    r.Name,
			Version: r.Version,
			Build:   r.Build,
			Channel: r.Channel,
			PURL:    r.PURL(),
		})
	}
	return elements
}

func packageTable(records []pkg.PackageRecord) string {
	table := uitable.New()
	table.AddRow("NAME", "VERSION", "BUILD", "CHANNEL", "SIZE")
	for _, r := range records {
		size := ""
		if r.Size > 0 {
			size = units.HumanSize(float64(r.Size))
		}
		table.AddRow(r.Name, r.Version, r.Build, r.Channel, size)
	}
	return table.String()
}
