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
	"fmt"
	"strings"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const PageInfo = "info"

// infoText renders the per-key status table.
func infoText(st models.Status, keyStatus map[string]string, all bindings.Map) string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "[::b]Device:[::-] %s\n\n", st.Message())
	for _, k := range bindings.AllKeys() {
		name := k.EventName()
		_, _ = fmt.Fprintf(&sb, "%-18s %-12s %s\n",
			name,
			keyStatus[name],
			tview.Escape(displayCommand(all[name])),
		)
	}
	return sb.String()
}

// BuildInfoPage shows each key's event name, status and binding. The
// status is refreshed by the main page's status loop through update.
func BuildInfoPage(pages *tview.Pages, svc StatusSource, b Bindings, back func()) (update func()) {
	view := tview.NewTextView().SetDynamicColors(true)
	view.SetTitle("Key status").SetTitleAlign(tview.AlignCenter)

	update = func() {
		st := svc.Status()
		view.SetText(infoText(st, svc.KeyStatus(), b.All()))
	}
	update()

	view.SetDoneFunc(func(tcell.Key) {
		back()
	})

	pageDefaults(PageInfo, pages, view)
	return update
}
