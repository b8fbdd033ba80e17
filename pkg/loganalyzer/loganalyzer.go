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

// Package loganalyzer filters and summarizes the application log.
package loganalyzer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
)

const (
	// Workers is the number of goroutines classifying matched lines.
	Workers = 4
	// maxLineSize is the longest log line bufio will accept.
	maxLineSize = 1024 * 1024
)

// Level is the severity a log line is classified as.
type Level int

const (
	LevelOther Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "OTHER"
	}
}

// ParseLevel maps a --type value to a level. Unknown values mean no type
// filter.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelOther, false
	}
}

// entry is the subset of a zerolog JSON line we care about.
type entry struct {
	Level   string `json:"level"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

func parseEntry(line string) (entry, bool) {
	var e entry
	if !strings.HasPrefix(strings.TrimSpace(line), "{") {
		return e, false
	}
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return e, false
	}
	return e, true
}

// Classify returns the level of a log line. JSON lines use their level
// field; anything else is classified by an INFO, WARN or ERROR prefix.
func Classify(line string) Level {
	if e, ok := parseEntry(line); ok {
		lvl, known := ParseLevel(e.Level)
		if !known {
			return LevelOther
		}
		return lvl
	}

	switch {
	case strings.HasPrefix(line, "INFO"):
		return LevelInfo
	case strings.HasPrefix(line, "WARN"):
		return LevelWarn
	case strings.HasPrefix(line, "ERROR"):
		return LevelError
	default:
		return LevelOther
	}
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}(-\d{2}){0,2}`)

// NormalizeDate turns a user supplied date into the form written in the
// log. Partial ISO dates like "2026-10" are kept as is so they still work
// as a substring filter.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || isoDatePrefix.MatchString(s) {
		return s
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// Filter selects log lines. Every set criterion must pass.
type Filter struct {
	Date    string
	Keyword string
	Type    Level
	HasType bool
}

// Match reports whether line passes every filter that is set.
func (f Filter) Match(line string) bool {
	if f.HasType && Classify(line) != f.Type {
		return false
	}
	if f.Date != "" && !strings.Contains(line, f.Date) {
		return false
	}
	if f.Keyword != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(f.Keyword)) {
		return false
	}
	return true
}

// Summary counts the lines seen during an analysis.
type Summary struct {
	Read      int64
	Processed int64
	Info      int64
	Warn      int64
	Error     int64
}

// Write prints the summary block shown after the matched lines.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"\n----------Summary----------\n\n"+
			"Filtered lines read: %d\n"+
			"Filtered log lines processed: %d\n"+
			"INFO lines: %d\n"+
			"WARN lines: %d\n"+
			"ERROR lines: %d\n",
		s.Read, s.Processed, s.Info, s.Warn, s.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Format selects how matched lines are echoed.
type Format int

const (
	FormatRaw Format = iota
	FormatCSV
)

// Record is one matched line in CSV output.
type Record struct {
	Time    string `csv:"time"`
	Level   string `csv:"level"`
	Message string `csv:"message"`
}

func toRecord(line string, lvl Level) Record {
	if e, ok := parseEntry(line); ok {
		return Record{Time: e.Time, Level: lvl.String(), Message: e.Message}
	}
	return Record{Level: lvl.String(), Message: line}
}

type counters struct {
	processed atomic.Int64
	info      atomic.Int64
	warn      atomic.Int64
	errors    atomic.Int64
}

// Analyze reads r line by line, echoes every line that passes f to out and
// counts levels of the matched lines across Workers goroutines.
func Analyze(ctx context.Context, r io.Reader, f Filter, format Format, out io.Writer) (Summary, error) {
	var (
		c       counters
		read    int64
		records []Record
	)

	lines := make(chan string, Workers*16)
	g, ctx := errgroup.WithContext(ctx)

	for range Workers {
		g.Go(func() error {
			for line := range lines {
				switch Classify(line) {
				case LevelInfo:
					c.info.Add(1)
				case LevelWarn:
					c.warn.Add(1)
				case LevelError:
					c.errors.Add(1)
				case LevelOther:
				}
				c.processed.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Text()
			if !f.Match(line) {
				continue
			}

			if format == FormatCSV {
				records = append(records, toRecord(line, Classify(line)))
			} else if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("failed to write line: %w", err)
			}
			read++

			select {
			case lines <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read log: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err //nolint:wrapcheck // errors are wrapped at the source
	}

	if format == FormatCSV {
		if err := gocsv.Marshal(records, out); err != nil {
			return Summary{}, fmt.Errorf("failed to write csv: %w", err)
		}
	}

	return Summary{
		Read:      read,
		Processed: c.processed.Load(),
		Info:      c.info.Load(),
		Warn:      c.warn.Load(),
		Error:     c.errors.Load(),
	}, nil
}
