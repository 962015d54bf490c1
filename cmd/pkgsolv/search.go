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
	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/search"
)

const searchDesc = `
Search the configured channels for packages.

Keywords are matched against package names, as globs when they hold one of
'*?[{', as substrings otherwise. Without keywords every package is listed.
Only the newest version of each package is shown, unless --versions is given.
`

func newSearchCmd(logger log.Logger) *cobra.Command {
	o := &search.Options{}

	cmd := &cobra.Command{
		Use:   "search [KEYWORD...]",
		Short: "search the channels for packages",
		Long:  searchDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := loadChannels(cmdContext(cmd))
			if err != nil {
				return err
			}
			return o.Run(logger, channels, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.Versions, "versions", "l", false, "show all versions of the packages, not only the newest")
	f.BoolVar(&o.Devel, "devel", false, "include development versions")
	f.StringVar(&o.Version, "version", "", "search using a version constraint, such as '>=1.20,<2'")
	f.UintVar(&o.MaxColWidth, "max-col-width", 50, "maximum column width for output table")
	bindOutputFlag(cmd, &o.OutputFormat)
	return cmd
}
