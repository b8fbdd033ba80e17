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

// Package macros matches device lines against key bindings and keeps the
// device copy of those bindings in sync with local edits.
package macros

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/transport"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// minSuggestSimilarity is the Jaro-Winkler score a bound command needs
	// to be offered as a near miss for an unmatched line.
	minSuggestSimilarity = 0.85
	// near-miss lookups for unmatched lines are limited to this rate; the
	// warning itself is always logged
	suggestBurst = 5
	suggestEvery = time.Second
)

// ErrInvalidCommand is returned by EncodeSet for commands that can't be
// framed as a single line.
var ErrInvalidCommand = errors.New("command contains a line break")

// Executor runs a matched command.
type Executor interface {
	Execute(cmd string)
}

// EncodeSet builds the line that tells the device key k is now bound to
// cmd. A tab separates the key index from the command.
func EncodeSet(k bindings.Key, cmd string) ([]byte, error) {
	if !k.Valid() {
		return nil, bindings.ErrInvalidKey
	}
	if strings.ContainsAny(cmd, "\r\n") {
		return nil, ErrInvalidCommand
	}
	return fmt.Appendf(nil, "SET%d\t%s\n", int(k), cmd), nil
}

// Table is the dispatch table from device lines to bound commands.
type Table struct {
	cfg      *config.Instance
	store    *bindings.Store
	tr       transport.Transport
	exec     Executor
	suggests *rate.Limiter
}

// NewTable returns a dispatch table over store. Matched commands run on
// exec and edits are pushed to the device through tr.
func NewTable(
	cfg *config.Instance,
	store *bindings.Store,
	tr transport.Transport,
	exec Executor,
) *Table {
	return &Table{
		cfg:      cfg,
		store:    store,
		tr:       tr,
		exec:     exec,
		suggests: rate.NewLimiter(rate.Every(suggestEvery), suggestBurst),
	}
}

// Match returns the key whose command equals line exactly. Unbound keys
// never match. Keys are scanned in ascending order and the first match
// wins.
func (t *Table) Match(line string) (bindings.Key, string, bool) {
	snapshot := t.store.All()
	for _, k := range bindings.AllKeys() {
		cmd := snapshot[k.EventName()]
		if cmd == "" {
			continue
		}
		if cmd == line {
			return k, cmd, true
		}
	}
	return 0, "", false
}

// HandleLine dispatches at most one command for an inbound line. Lines
// that match nothing are logged and dropped.
func (t *Table) HandleLine(line string) bool {
	k, cmd, ok := t.Match(line)
	if !ok {
		t.logUnmatched(line)
		return false
	}

	log.Info().Msgf("%s matched, running bound command", k)
	t.exec.Execute(cmd)
	return true
}

// Suggest returns the bound command most similar to line, for diagnosing
// whitespace or typo mismatches between the device and a binding.
func (t *Table) Suggest(line string) (bindings.Key, string, bool) {
	var (
		best      bindings.Key
		bestCmd   string
		bestScore float32
	)

	snapshot := t.store.All()
	for _, k := range bindings.AllKeys() {
		cmd := snapshot[k.EventName()]
		if cmd == "" || line == "" {
			continue
		}
		score := edlib.JaroWinklerSimilarity(line, cmd)
		if score >= minSuggestSimilarity && score > bestScore {
			best, bestCmd, bestScore = k, cmd, score
		}
	}
	return best, bestCmd, bestScore > 0
}

// logUnmatched writes one warning per unmatched line. A flood of noise
// skips the near-miss scan once the limiter runs dry.
func (t *Table) logUnmatched(line string) {
	ev := log.Warn()
	if t.suggests.Allow() {
		if k, cmd, ok := t.Suggest(line); ok {
			ev = ev.Str("closest_key", k.String()).Str("closest_command", cmd)
		}
	}
	ev.Msgf("no binding matches device line: %q", line)
}

// Get returns the command bound to k.
func (t *Table) Get(k bindings.Key) string {
	return t.store.Get(k)
}

// All returns a copy of every binding keyed by event name.
func (t *Table) All() bindings.Map {
	return t.store.All()
}

// Set binds cmd to key k and persists the full set before returning. A save
// failure is returned and the binding is left unchanged. If the device is
// connected the new binding is pushed to it; push failures are only
// logged.
func (t *Table) Set(k bindings.Key, cmd string) error {
	if err := t.store.Set(k, cmd); err != nil {
		return err //nolint:wrapcheck // store error already names the key
	}

	if !t.cfg.PushOnEdit() || !t.tr.IsConnected() {
		log.Debug().Msgf("%s saved locally only", k)
		return nil
	}

	data, err := EncodeSet(k, cmd)
	if err != nil {
		log.Warn().Err(err).Msgf("not pushing %s to device", k)
		return nil
	}
	if err := t.tr.Write(data); err != nil {
		log.Warn().Err(err).Msgf("failed to push %s to device", k)
	}
	return nil
}
