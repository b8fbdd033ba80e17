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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ZaparooProject/macropad/pkg/cli"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/ZaparooProject/macropad/pkg/service"
	"github.com/ZaparooProject/macropad/pkg/ui/tui"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// analyzerPath locates the log analyzer binary next to this one.
func analyzerPath() string {
	name := "macropad-logs"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func run() error {
	flags := cli.SetupFlags()
	debug := flag.Bool(
		"debug",
		false,
		"enable debug logging for this run",
	)

	flags.Pre()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	paths := config.DefaultPaths()
	cfg := cli.Setup(paths, config.BaseDefaults, logWriters)
	if *debug {
		cfg.SetDebugLogging(true)
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg)

	executor := &command.RealExecutor{}
	svc, err := service.Start(cfg, service.Options{Executor: executor})
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			log.Error().Msgf("error stopping service: %s", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if *flags.Daemon {
		log.Info().Msg("started in daemon mode")
		<-sigs
		return nil
	}

	app, stopUI := tui.BuildMain(tui.Options{
		Bindings:     svc.Macros,
		Status:       svc,
		Executor:     executor,
		AnalyzerPath: analyzerPath(),
		LogPath:      paths.LogPath(),
		OnQuit: func() {
			if err := svc.Stop(); err != nil {
				log.Error().Err(err).Msg("error stopping service")
			}
		},
	})
	defer stopUI()

	go func() {
		select {
		case <-sigs:
			app.Stop()
		case <-svc.Done():
		}
	}()

	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("error running UI")
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}
