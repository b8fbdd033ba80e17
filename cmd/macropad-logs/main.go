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
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/loganalyzer"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	logType := flag.String("type", "", "only show lines of this level (info, warn, error)")
	date := flag.String("date", "", "only show lines containing this date")
	keyword := flag.String("keyword", "", "only show lines containing this keyword, ignoring case")
	file := flag.String("file", config.DefaultPaths().LogPath(), "log file to analyze")
	csvOut := flag.Bool("csv", false, "print matched lines as CSV")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		_, _ = fmt.Printf("Zaparoo MacroPad log analyzer v%s\n", config.AppVersion)
		return nil
	}

	f := loganalyzer.Filter{
		Date:    loganalyzer.NormalizeDate(*date),
		Keyword: *keyword,
	}
	if lvl, ok := loganalyzer.ParseLevel(*logType); ok {
		f.Type = lvl
		f.HasType = true
	}

	format := loganalyzer.FormatRaw
	if *csvOut {
		format = loganalyzer.FormatCSV
	}

	logFile, err := os.Open(*file) //nolint:gosec // path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()

	summary, err := loganalyzer.Analyze(context.Background(), logFile, f, format, os.Stdout)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return summary.Write(os.Stdout) //nolint:wrapcheck // already wrapped
}
