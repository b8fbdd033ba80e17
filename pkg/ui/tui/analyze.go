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

package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	PageAnalyze = "analyze"

	analyzeTimeout = 30 * time.Second
)

// analyzerArgs builds the analyzer command line, passing only the filters
// that were filled in.
func analyzerArgs(logPath, logType, date, keyword string) []string {
	var args []string
	if logPath != "" {
		args = append(args, "--file", logPath)
	}
	if v := strings.TrimSpace(logType); v != "" {
		args = append(args, "--type", v)
	}
	if v := strings.TrimSpace(date); v != "" {
		args = append(args, "--date", v)
	}
	if v := strings.TrimSpace(keyword); v != "" {
		args = append(args, "--keyword", v)
	}
	return args
}

// runAnalyzer runs the analyzer binary and returns the text to display.
func runAnalyzer(ctx context.Context, executor command.Executor, path string, args []string) string {
	out, err := executor.Output(ctx, path, args...)
	if err == nil {
		log.Info().Msgf("log analysis ran with: %s %s", path, strings.Join(args, " "))
		return string(out)
	}

	log.Error().Err(err).Msg("log analysis failed")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("Log analysis failed (exit code %d).\n\n%s", exitErr.ExitCode(), out)
	}
	return "Log analysis failed to run:\n" + err.Error()
}

// BuildAnalyzePage shows the filter form and the analyzer's output.
func BuildAnalyzePage(
	app *tview.Application,
	pages *tview.Pages,
	executor command.Executor,
	analyzerPath string,
	logPath string,
	back func(),
) *tview.Flex {
	output := tview.NewTextView().
		SetScrollable(true).
		SetWrap(true)
	output.SetBorder(true).SetTitle("Results")

	form := tview.NewForm()
	form.AddInputField("Log type", "", 10, nil, nil)
	form.AddInputField("Date (YYYY-MM-DD)", "", 12, nil, nil)
	form.AddInputField("Keyword", "", 24, nil, nil)

	text := func(label string) string {
		field, ok := form.GetFormItemByLabel(label).(*tview.InputField)
		if !ok {
			return ""
		}
		return field.GetText()
	}

	form.AddButton("Analyze", func() {
		args := analyzerArgs(logPath, text("Log type"), text("Date (YYYY-MM-DD)"), text("Keyword"))
		output.SetText("Analyzing...")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
			defer cancel()
			result := runAnalyzer(ctx, executor, analyzerPath, args)
			app.QueueUpdateDraw(func() {
				output.SetText(result).ScrollToEnd()
			})
		}()
	})
	form.AddButton("Back", back)
	form.SetCancelFunc(back)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 9, 1, true).
		AddItem(output, 0, 1, false)
	layout.SetTitle("Log analyzer").SetTitleAlign(tview.AlignCenter)

	pageDefaults(PageAnalyze, pages, layout)
	return layout
}
