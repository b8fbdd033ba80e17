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
	"strings"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	// EmptySentinel is shown in place of an unbound command. Saving it
	// unbinds the key.
	EmptySentinel = "EMPTY"

	PageEdit      = "edit"
	PageSaveError = "save_error"
)

func displayCommand(cmd string) string {
	if cmd == "" {
		return EmptySentinel
	}
	return cmd
}

func parseCommand(input string) string {
	if strings.TrimSpace(input) == EmptySentinel {
		return ""
	}
	return input
}

// saveBinding stores the edited command and reports a failure to the user.
// It returns true on success.
func saveBinding(pages *tview.Pages, b Bindings, k bindings.Key, input string) bool {
	if err := b.Set(k, parseCommand(input)); err != nil {
		log.Error().Err(err).Msgf("failed to save binding for %s", k)
		showModal(pages, PageSaveError, "Save failed",
			"Could not save the binding for "+k.String()+":\n\n"+err.Error())
		return false
	}
	return true
}

// BuildEditPage shows a form for changing the command bound to k. done is
// called after a successful save or cancel.
func BuildEditPage(pages *tview.Pages, b Bindings, k bindings.Key, done func()) *tview.Form {
	form := tview.NewForm()
	form.AddInputField("Command", displayCommand(b.Get(k)), 48, nil, nil)

	field, _ := form.GetFormItemByLabel("Command").(*tview.InputField)

	closePage := func() {
		pages.RemovePage(PageEdit)
		if done != nil {
			done()
		}
	}

	form.AddButton("Save", func() {
		if saveBinding(pages, b, k, field.GetText()) {
			closePage()
		}
	})
	form.AddButton("Clear", func() {
		field.SetText(EmptySentinel)
	})
	form.AddButton("Cancel", closePage)
	form.SetCancelFunc(closePage)

	form.SetTitle("Edit " + k.String()).SetTitleAlign(tview.AlignCenter)
	pageDefaults(PageEdit, pages, form)
	return form
}
