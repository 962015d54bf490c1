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
	"path/filepath"
	"strconv"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolv/pkg/repo"
)

var channelsHelp = `
This command consists of multiple subcommands to interact with the channels
file.

It can be used to add, remove and list channels.
`

func newChannelsCmd(logger log.Logger) *cobra.Command {
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	cmd := &cobra.Command{
		Use:   "channels add|remove|list [ARGS]",
		Short: "add, list and remove channels",
		Long:  channelsHelp,
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		newChannelsAddCmd(wInfo),
		newChannelsListCmd(wInfo),
		newChannelsRemoveCmd(wInfo),
	)

	return cmd
}

type channelsAddOptions struct {
	name        string
	paths       []string
	priority    int
	forceUpdate bool
	channelFile string
}

func newChannelsAddCmd(out io.Writer) *cobra.Command {
	o := &channelsAddOptions{}

	cmd := &cobra.Command{
		Use:   "add NAME PATH...",
		Short: "add a channel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.name = args[0]
			o.paths = args[1:]
			o.channelFile = settings.ChannelsFile
			return o.run(cmdContext(cmd), out)
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.priority, "priority", 0, "priority of the channel, higher wins")
	f.BoolVar(&o.forceUpdate, "force-update", false, "replace the channel if it already exists")
	return cmd
}

func (o *channelsAddOptions) run(ctx context.Context, out io.Writer) error {
	f, err := repo.LoadFile(o.channelFile)
	if isNotExist(err) {
		f = repo.NewFile()
	} else if err != nil {
		return err
	}

	if f.Has(o.name) && !o.forceUpdate {
		return errors.Errorf("channel name (%s) already exists, please specify a different name", o.name)
	}

	paths := make([]string, 0, len(o.paths))
	for _, p := range o.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if _, err := repo.LoadChannels(ctx, []*repo.Entry{{Name: o.name, Paths: []string{abs}}}); err != nil {
			return errors.Wrapf(err, "looks like %q is not a valid channel path", p)
		}
		paths = append(paths, abs)
	}

	f.Update(&repo.Entry{Name: o.name, Priority: o.priority, Paths: paths})
	if err := f.WriteFile(o.channelFile, 0644); err != nil {
		return err
	}
	fmt.Fprintf(out, "%q has been added to your channels\n", o.name)
	return nil
}

func newChannelsListCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list channels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadChannelsFile()
			if err != nil {
				return err
			}
			table := uitable.New()
			table.AddRow("NAME", "PRIORITY", "PATHS")
			for _, e := range f.Channels {
				for i, p := range e.Paths {
					if i == 0 {
						table.AddRow(e.Name, strconv.Itoa(e.Priority), p)
						continue
					}
					table.AddRow("", "", p)
				}
			}
			_, err = fmt.Fprintln(out, table.String())
			return err
		},
	}
	return cmd
}

type channelsRemoveOptions struct {
	names       []string
	channelFile string
}

func newChannelsRemoveCmd(out io.Writer) *cobra.Command {
	o := &channelsRemoveOptions{}

	cmd := &cobra.Command{
		Use:     "remove [CHANNEL1 [CHANNEL2 ...]]",
		Aliases: []string{"rm"},
		Short:   "remove one or more channels",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.channelFile = settings.ChannelsFile
			o.names = args
			return o.run(out)
		},
	}
	return cmd
}

func (o *channelsRemoveOptions) run(out io.Writer) error {
	f, err := repo.LoadFile(o.channelFile)
	if isNotExist(err) || (err == nil && len(f.Channels) == 0) {
		return errors.New("no channels configured")
	}
	if err != nil {
		return err
	}

	for _, name := range o.names {
		if !f.Remove(name) {
			return errors.Errorf("no channel named %q found", name)
		}
		if err := f.WriteFile(o.channelFile, 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "%q has been removed from your channels\n", name)
	}

	return nil
}
