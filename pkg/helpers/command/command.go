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

// Package command wraps os/exec behind an interface so the action executor
// and the log analysis page can be tested without spawning processes.
package command

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// StartOptions configures command startup behavior.
type StartOptions struct {
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
	// Detach puts the child in its own process group so it outlives the
	// parent and does not receive the parent's terminal signals.
	Detach bool
}

// Executor provides an abstraction over exec.Command for testability.
type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start starts a command without waiting for it to complete
	// (fire-and-forget). The exit status is never reported to the caller.
	Start(ctx context.Context, name string, args ...string) error

	// StartWithOptions starts a command with platform-specific options.
	StartWithOptions(ctx context.Context, opts StartOptions, name string, args ...string) error
}

// RealExecutor uses actual exec.Command to execute system commands.
type RealExecutor struct{}

//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (e *RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	return e.StartWithOptions(ctx, StartOptions{}, name, args...)
}

func (*RealExecutor) StartWithOptions(
	_ context.Context,
	opts StartOptions,
	name string,
	args ...string,
) error {
	// Not bound to ctx: a started command must keep running after the
	// caller's context ends.
	//nolint:gosec,noctx // user-bound macros are run as given
	cmd := exec.Command(name, args...)
	applyOptions(cmd, opts)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	go func() {
		// reap the child so it doesn't linger as a zombie
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Int("pid", pid).Msg("detached command exited with error")
			return
		}
		log.Debug().Int("pid", pid).Msg("detached command exited")
	}()

	return nil
}
