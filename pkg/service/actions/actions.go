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

// Package actions runs bound macro commands as detached processes.
package actions

import (
	"context"
	"runtime"
	"strings"

	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// Runner runs bound commands through the platform shell without waiting for
// them to finish.
type Runner struct {
	exec command.Executor
	goos string
}

// NewRunner returns a runner using exec, or the real executor if nil.
func NewRunner(exec command.Executor) *Runner {
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	return &Runner{exec: exec, goos: runtime.GOOS}
}

// shell returns the interpreter and arguments used to run cmd.
func (r *Runner) shell(cmd string) (name string, args []string) {
	if r.goos == "windows" {
		return "cmd", []string{"/C", cmd}
	}
	return "/bin/sh", []string{"-c", cmd}
}

// Execute starts cmd and returns immediately. Start errors are logged and
// never returned so a bad binding can't affect the caller.
func (r *Runner) Execute(cmd string) {
	if strings.TrimSpace(cmd) == "" {
		log.Debug().Msg("ignoring empty command")
		return
	}

	name, args := r.shell(cmd)
	opts := command.StartOptions{
		Detach:     true,
		HideWindow: true,
	}

	log.Info().Msgf("executing command: %s", cmd)
	err := r.exec.StartWithOptions(context.Background(), opts, name, args...)
	if err != nil {
		log.Error().Err(err).Msgf("failed to execute command: %s", cmd)
	}
}
