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

// Package tui is the terminal front end: a keypad of the nine bindings, the
// connection status line and pages for editing, key status and log
// analysis.
package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	PageMain = "main"

	labelWidth = 16
)

// KeypadLayout is the on-screen key order, matching a numeric keypad.
var KeypadLayout = [3][3]bindings.Key{
	{7, 8, 9},
	{4, 5, 6},
	{1, 2, 3},
}

// Bindings is the binding table as seen by the UI.
type Bindings interface {
	Get(k bindings.Key) string
	Set(k bindings.Key, cmd string) error
	All() bindings.Map
}

// StatusSource provides connection state.
type StatusSource interface {
	Subscribe(bufferSize int) (<-chan models.Status, int)
	Unsubscribe(id int)
	Status() models.Status
	KeyStatus() map[string]string
}

// Options configures the main screen.
type Options struct {
	Bindings     Bindings
	Status       StatusSource
	Executor     command.Executor
	AnalyzerPath string
	LogPath      string
	// OnQuit runs when the user exits, before the app stops.
	OnQuit func()
}

// mainPage holds the widgets the status loop updates.
type mainPage struct {
	app        *tview.Application
	pages      *tview.Pages
	status     *tview.TextView
	helpText   *tview.TextView
	opts       Options
	keys       map[bindings.Key]*tview.Button
	infoUpdate func()
	current    models.Status
	mu         syncutil.Mutex
	frame      int
}

func keyLabel(k bindings.Key, cmd string) string {
	return fmt.Sprintf("%d: %s", int(k), truncate(displayCommand(cmd), labelWidth))
}

func (m *mainPage) refreshLabels() {
	all := m.opts.Bindings.All()
	for k, btn := range m.keys {
		btn.SetLabel(keyLabel(k, all[k.EventName()]))
	}
}

// apply updates the status line and key state for st. Must run on the UI
// goroutine.
func (m *mainPage) apply(st models.Status) {
	m.mu.Lock()
	m.current = st
	m.frame = 0
	m.mu.Unlock()

	m.status.SetText(tview.Escape(statusText(st, 0)))
	for _, btn := range m.keys {
		btn.SetDisabled(!st.EditingEnabled())
	}
	if m.infoUpdate != nil {
		m.infoUpdate()
	}
}

// tick advances the connecting animation. It reports whether the status
// line changed.
func (m *mainPage) tick() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.State != models.StateConnecting {
		return "", false
	}
	m.frame++
	return connectingFrame(m.frame), true
}

func (m *mainPage) goHome() {
	m.infoUpdate = nil
	m.pages.SwitchToPage(PageMain)
	m.refreshLabels()
}

func (m *mainPage) edit(k bindings.Key) {
	m.mu.Lock()
	enabled := m.current.EditingEnabled()
	m.mu.Unlock()
	if !enabled {
		return
	}
	BuildEditPage(m.pages, m.opts.Bindings, k, m.goHome)
}

func (m *mainPage) quit() {
	if m.opts.OnQuit != nil {
		m.opts.OnQuit()
	}
	m.app.Stop()
}

// setupKeypadNavigation moves focus around the grid with the arrow keys.
func (m *mainPage) setupKeypadNavigation(extra []*tview.Button) {
	for r, row := range KeypadLayout {
		for c, k := range row {
			btn := m.keys[k]
			btn.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
				nr, nc := r, c
				switch event.Key() { //nolint:exhaustive
				case tcell.KeyUp:
					nr = (r + 2) % 3
				case tcell.KeyDown:
					if r == 2 {
						m.app.SetFocus(extra[0])
						return nil
					}
					nr = r + 1
				case tcell.KeyLeft:
					nc = (c + 2) % 3
				case tcell.KeyRight:
					nc = (c + 1) % 3
				case tcell.KeyEscape:
					m.quit()
					return nil
				default:
					return event
				}
				m.app.SetFocus(m.keys[KeypadLayout[nr][nc]])
				return nil
			})
		}
	}

	for i, btn := range extra {
		prev := extra[(i-1+len(extra))%len(extra)]
		next := extra[(i+1)%len(extra)]
		btn.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			switch event.Key() { //nolint:exhaustive
			case tcell.KeyLeft:
				m.app.SetFocus(prev)
				return nil
			case tcell.KeyRight:
				m.app.SetFocus(next)
				return nil
			case tcell.KeyUp:
				m.app.SetFocus(m.keys[KeypadLayout[2][0]])
				return nil
			case tcell.KeyEscape:
				m.quit()
				return nil
			}
			return event
		})
	}
}

func buildMainPage(app *tview.Application, pages *tview.Pages, opts Options) *mainPage {
	m := &mainPage{
		app:      app,
		pages:    pages,
		opts:     opts,
		keys:     make(map[bindings.Key]*tview.Button, bindings.NumKeys),
		status:   tview.NewTextView().SetDynamicColors(true),
		helpText: tview.NewTextView(),
	}

	grid := tview.NewGrid().
		SetRows(3, 3, 3).
		SetColumns(0, 0, 0).
		SetGap(1, 2)
	for r, row := range KeypadLayout {
		for c, k := range row {
			btn := tview.NewButton("").SetSelectedFunc(func() {
				m.edit(k)
			})
			btn.SetFocusFunc(func() {
				m.helpText.SetText("Edit the command bound to " + k.String() + ".")
			})
			m.keys[k] = btn
			grid.AddItem(btn, r, c, 1, 1, 0, 0, k == KeypadLayout[0][0])
		}
	}
	m.refreshLabels()

	infoButton := tview.NewButton("Key status").SetSelectedFunc(func() {
		m.infoUpdate = BuildInfoPage(pages, opts.Status, opts.Bindings, m.goHome)
	})
	infoButton.SetFocusFunc(func() {
		m.helpText.SetText("Show each key's connection status and binding.")
	})

	analyzeButton := tview.NewButton("Analyze log").SetSelectedFunc(func() {
		BuildAnalyzePage(app, pages, opts.Executor, opts.AnalyzerPath, opts.LogPath, m.goHome)
	})
	analyzeButton.SetFocusFunc(func() {
		m.helpText.SetText("Filter and summarize the application log.")
	})

	exitButton := tview.NewButton("Exit").SetSelectedFunc(m.quit)
	exitButton.SetFocusFunc(func() {
		m.helpText.SetText("Close the device connection and exit.")
	})

	extra := []*tview.Button{infoButton, analyzeButton, exitButton}
	m.setupKeypadNavigation(extra)

	buttonBar := tview.NewFlex().
		AddItem(infoButton, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false).
		AddItem(analyzeButton, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false).
		AddItem(exitButton, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(m.status, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(grid, 11, 0, true).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(buttonBar, 1, 0, false).
		AddItem(m.helpText, 1, 0, false)
	layout.SetTitle("Zaparoo MacroPad v" + config.AppVersion).
		SetTitleAlign(tview.AlignCenter)

	m.apply(opts.Status.Status())
	pageDefaults(PageMain, pages, layout)
	return m
}

// watch applies status updates and drives the connecting animation until
// the subscription closes or stop is closed.
func (m *mainPage) watch(statuses <-chan models.Status, stop <-chan struct{}) {
	ticker := time.NewTicker(animationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case st, ok := <-statuses:
			if !ok {
				return
			}
			m.app.QueueUpdateDraw(func() {
				m.apply(st)
			})
		case <-ticker.C:
			if text, ok := m.tick(); ok {
				m.app.QueueUpdateDraw(func() {
					m.status.SetText(text)
				})
			}
		}
	}
}

// BuildMain creates the application. The returned stop function ends the
// status loop and should be called after Run returns.
func BuildMain(opts Options) (app *tview.Application, stop func()) {
	app = tview.NewApplication()
	SetTheme(&tview.Styles)

	pages := tview.NewPages()
	m := buildMainPage(app, pages, opts)

	statuses, id := opts.Status.Subscribe(16)
	done := make(chan struct{})
	go m.watch(statuses, done)

	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			opts.Status.Unsubscribe(id)
		})
	}

	return app.SetRoot(CenterWidget(70, 24, pages), true), stop
}
