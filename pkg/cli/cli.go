/*
Zaparoo MacroPad
Copyright (c) 2026 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo MacroPad.

Zaparoo MacroPad is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo MacroPad is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo MacroPad.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cli holds the flags and setup shared by the macropad binaries.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers"
	"github.com/ZaparooProject/macropad/pkg/service"
	"github.com/ZaparooProject/macropad/pkg/service/macros"
	"github.com/ZaparooProject/macropad/pkg/transport"
	"github.com/rs/zerolog/log"
)

var errSetFormat = errors.New("set flag must be in the form N=command")

// Flags holds the parsed command line options.
type Flags struct {
	Version   *bool
	Daemon    *bool
	ListPorts *bool
	Get       *string
	Set       *string
}

// SetupFlags defines the common flags. Add any custom flags before calling
// Pre.
func SetupFlags() *Flags {
	return &Flags{
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run in the foreground with no UI, logging to stderr",
		),
		ListPorts: flag.Bool(
			"list-ports",
			false,
			"print candidate serial ports and exit",
		),
		Get: flag.String(
			"get",
			"",
			"print the command bound to key N and exit",
		),
		Set: flag.String(
			"set",
			"",
			"bind a command to a key (N=command) and exit",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses flags and handles the ones that don't need config or logging.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Zaparoo MacroPad v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// Post handles one-shot flags that need config. It exits the process if
// one of them was given.
func (f *Flags) Post(cfg *config.Instance) {
	var err error
	switch {
	case *f.ListPorts:
		err = ListPorts(transport.NewSerial(cfg), os.Stdout)
	case isFlagPassed("get"):
		table, _ := service.OpenTable(cfg, service.Options{})
		err = GetBinding(table, *f.Get, os.Stdout)
	case isFlagPassed("set"):
		table, _ := service.OpenTable(cfg, service.Options{})
		err = SetBinding(table, *f.Set)
	default:
		return
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// ListPorts prints the endpoints the supervisor would try, in order.
func ListPorts(tr transport.Transport, w io.Writer) error {
	ports, err := tr.ListEndpoints()
	if err != nil {
		return fmt.Errorf("failed to list ports: %w", err)
	}
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		_, _ = fmt.Fprintln(w, p)
	}
	return nil
}

// GetBinding prints the command bound to the key named by arg.
func GetBinding(table *macros.Table, arg string, w io.Writer) error {
	k, err := bindings.ParseKey(arg)
	if err != nil {
		return err //nolint:wrapcheck // already names the key
	}
	_, _ = fmt.Fprintln(w, table.Get(k))
	return nil
}

// ParseSetArg splits an N=command argument. The command may be empty to
// unbind the key.
func ParseSetArg(arg string) (bindings.Key, string, error) {
	keyPart, cmd, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", errSetFormat
	}
	k, err := bindings.ParseKey(keyPart)
	if err != nil {
		return 0, "", err //nolint:wrapcheck // already names the key
	}
	return k, cmd, nil
}

// SetBinding applies an N=command argument to the table.
func SetBinding(table *macros.Table, arg string) error {
	k, cmd, err := ParseSetArg(arg)
	if err != nil {
		return err
	}
	if err := table.Set(k, cmd); err != nil {
		return fmt.Errorf("failed to set binding: %w", err)
	}
	return nil
}

// Setup creates the app directories, loads config and starts logging.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	paths config.Paths,
	defaultConfig config.Values,
	writers []io.Writer,
) *config.Instance {
	err := helpers.EnsureDirectories(paths)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(paths, defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(cfg, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	return cfg
}
