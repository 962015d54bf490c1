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
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/eyecandy"
	"github.com/rancher-sandbox/pkgsolv/pkg/lint"
	"github.com/rancher-sandbox/pkgsolv/pkg/lint/support"
)

var longLintHelp = `
This command takes a path to a channel index (repodata.json) and runs a
series of tests to verify that its records are well-formed.

If the linter encounters things that will cause the resolution to fail, it
will emit [ERROR] messages. If it encounters issues that break with convention
or recommendation, it will emit [WARNING] messages.
`

func newLintCmd(logger log.Logger) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint PATH...",
		Short: "examine channel indexes for possible issues",
		Long:  longLintHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			failed := 0
			for _, path := range paths {
				linter := lint.All(path)

				var sb strings.Builder
				sb.WriteString(fmt.Sprintf("==> Linting %s\n", path))
				for _, msg := range linter.Messages {
					sb.WriteString(colorize(msg))
					sb.WriteString("\n")
				}
				logger.Info(sb.String())

				if linter.HighestSeverity == support.ErrorSev ||
					(strict && linter.HighestSeverity == support.WarningSev) {
					failed++
				}
			}

			summary := fmt.Sprintf("%d index(es) linted, %d index(es) failed", len(paths), failed)
			if failed > 0 {
				return errors.New(summary)
			}
			logger.Info(eyecandy.ESPrintf(settings.NoEmojis, ":heavy_check_mark: %s", summary))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&strict, "strict", false, "fail on lint warnings")
	return cmd
}

func colorize(msg support.Message) string {
	switch msg.Severity {
	case support.ErrorSev:
		return red(msg.Error())
	case support.WarningSev:
		return yellow(msg.Error())
	}
	return msg.Error()
}
