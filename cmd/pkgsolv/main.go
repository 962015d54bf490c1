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
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	logrusimpl "github.com/Masterminds/log-go/impl/logrus"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/rancher-sandbox/pkgsolv/pkg/cli"
)

var settings = cli.New()

var red = color.New(color.FgRed).SprintFunc()
var yellow = color.New(color.FgYellow).SprintFunc()
var magenta = color.New(color.FgMagenta).SprintFunc()

// newLogger returns the logger commands print their results through.
func newLogger(out, errOut io.Writer) log.Logger {
	logger := logcli.NewStandard()
	logger.InfoOut = out
	logger.WarnOut = errOut
	logger.ErrorOut = errOut
	logger.DebugOut = errOut
	if settings.Debug {
		logger.Level = log.DebugLevel
	}
	return logger
}

// newDiagnosticsLogger returns the logger of the resolution internals, with
// structured fields on errOut.
func newDiagnosticsLogger(errOut io.Writer) log.Logger {
	lr := logrus.New()
	lr.Out = errOut
	lr.Formatter = &logrus.TextFormatter{DisableColors: color.NoColor, DisableTimestamp: true}
	lr.Level = logrus.WarnLevel
	if settings.Debug {
		lr.Level = logrus.DebugLevel
	}
	return logrusimpl.New(lr)
}

// colorsEnabled reports whether f is a terminal that colors can be used on.
func colorsEnabled(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func main() {
	if !colorsEnabled(os.Stdout) {
		color.NoColor = true
	}
	cmd, err := newRootCmd(os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if settings.Debug {
			fmt.Fprintf(os.Stderr, "[debug] %s\n", magenta(fmt.Sprintf("%+v", err)))
		}
		os.Exit(1)
	}
}
