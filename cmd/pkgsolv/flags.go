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
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/action"
	"github.com/rancher-sandbox/pkgsolv/pkg/prefix"
)

const (
	outputFlag = "output"
	pinFlag    = "pin"
)

// bindOutputFlag will add the output flag to the given command and bind the
// value to the given format pointer
func bindOutputFlag(cmd *cobra.Command, varRef *action.OutputMode) {
	cmd.Flags().VarP(newOutputValue(action.Table, varRef), outputFlag, "o",
		fmt.Sprintf("prints the output in the specified format. Allowed values: %s", strings.Join(action.OutputModes(), ", ")))

	err := cmd.RegisterFlagCompletionFunc(outputFlag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var formatNames []string
		for _, format := range action.OutputModes() {
			if strings.HasPrefix(format, toComplete) {
				formatNames = append(formatNames, format)
			}
		}
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})

	if err != nil {
		log.Fatal(err)
	}
}

// bindPinFlag adds the --pin flag, completing the names of the installed
// packages.
func bindPinFlag(cmd *cobra.Command, pinned *[]string) {
	cmd.Flags().StringSliceVar(pinned, pinFlag, []string{}, "names of installed packages to keep as they are")

	err := cmd.RegisterFlagCompletionFunc(pinFlag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if settings.Prefix == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		installed, err := prefix.Load(settings.Prefix)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, rec := range installed {
			if strings.HasPrefix(rec.Name, toComplete) {
				names = append(names, rec.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	if err != nil {
		log.Fatal(err)
	}
}

type outputValue action.OutputMode

func newOutputValue(defaultValue action.OutputMode, p *action.OutputMode) *outputValue {
	*p = defaultValue
	return (*outputValue)(p)
}

func (o *outputValue) String() string {
	// It is much cleaner looking (and technically less allocations) to just
	// convert to a string rather than type asserting to the underlying
	// action.OutputMode
	return string(*o)
}

func (o *outputValue) Type() string {
	return "format"
}

func (o *outputValue) Set(s string) error {
	outfmt, err := action.ParseOutputMode(s)
	if err != nil {
		return err
	}
	*o = outputValue(outfmt)
	return nil
}
