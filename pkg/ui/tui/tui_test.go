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
	"os/exec"
	"testing"
	"time"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/ZaparooProject/macropad/pkg/service"
	"github.com/ZaparooProject/macropad/pkg/testing/mocks"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeBindings struct {
	setErr error
	m      bindings.Map
}

func newFakeBindings() *fakeBindings {
	return &fakeBindings{m: bindings.Defaults()}
}

func (f *fakeBindings) Get(k bindings.Key) string { return f.m[k.EventName()] }

func (f *fakeBindings) Set(k bindings.Key, cmd string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.m[k.EventName()] = cmd
	return nil
}

func (f *fakeBindings) All() bindings.Map {
	out := make(bindings.Map, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out
}

type fakeStatus struct {
	ch chan models.Status
	st models.Status
}

func (f *fakeStatus) Subscribe(int) (<-chan models.Status, int) { return f.ch, 0 }
func (f *fakeStatus) Unsubscribe(int)                           {}
func (f *fakeStatus) Status() models.Status                     { return f.st }
func (f *fakeStatus) KeyStatus() map[string]string              { return service.KeyStatus(f.st) }

func TestConnectingFrame(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Connecting.", connectingFrame(0))
	assert.Equal(t, "Connecting..", connectingFrame(1))
	assert.Equal(t, "Connecting...", connectingFrame(2))
	assert.Equal(t, "Connecting.", connectingFrame(3))
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Connected: COM3", statusText(models.Status{State: models.StateConnected, Endpoint: "COM3"}, 0))
	assert.Equal(t, "Disconnected", statusText(models.Status{State: models.StateDisconnected}, 0))
	assert.Equal(t, "Disconnected (retrying in 4s)",
		statusText(models.Status{State: models.StateDisconnected, RetryIn: 4 * time.Second}, 0))
	assert.Equal(t, "Connecting..", statusText(models.Status{State: models.StateConnecting}, 1))
}

func TestEmptySentinel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EmptySentinel, displayCommand(""))
	assert.Equal(t, "echo a", displayCommand("echo a"))
	assert.Empty(t, parseCommand("EMPTY"))
	assert.Empty(t, parseCommand(" EMPTY "))
	assert.Equal(t, "echo EMPTY", parseCommand("echo EMPTY"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}

func TestKeypadLayout(t *testing.T) {
	t.Parallel()

	var order []bindings.Key
	for _, row := range KeypadLayout {
		order = append(order, row[:]...)
	}
	assert.Equal(t, []bindings.Key{7, 8, 9, 4, 5, 6, 1, 2, 3}, order)
}

func TestSaveBinding(t *testing.T) {
	t.Parallel()

	b := newFakeBindings()
	pages := tview.NewPages()

	assert.True(t, saveBinding(pages, b, 4, "echo four"))
	assert.Equal(t, "echo four", b.Get(4))

	assert.True(t, saveBinding(pages, b, 4, EmptySentinel))
	assert.Empty(t, b.Get(4))
	assert.False(t, pages.HasPage(PageSaveError))
}

func TestSaveBinding_FailureShowsModal(t *testing.T) {
	t.Parallel()

	b := newFakeBindings()
	b.setErr = errors.New("disk full")
	pages := tview.NewPages()

	assert.False(t, saveBinding(pages, b, 2, "echo two"))
	assert.True(t, pages.HasPage(PageSaveError))
}

func TestBuildEditPage_PrefillsSentinel(t *testing.T) {
	t.Parallel()

	b := newFakeBindings()
	pages := tview.NewPages()
	form := BuildEditPage(pages, b, 6, nil)

	field, ok := form.GetFormItemByLabel("Command").(*tview.InputField)
	require.True(t, ok)
	assert.Equal(t, EmptySentinel, field.GetText())
	assert.True(t, pages.HasPage(PageEdit))
}

func TestInfoText(t *testing.T) {
	t.Parallel()

	st := models.Status{State: models.StateConnected, Endpoint: "/dev/ttyACM0"}
	all := bindings.Defaults()
	all["Button 2 pressed"] = "echo two"

	text := infoText(st, service.KeyStatus(st), all)
	assert.Contains(t, text, "Connected: /dev/ttyACM0")
	assert.Contains(t, text, "Button 2 pressed")
	assert.Contains(t, text, "echo two")
	assert.Contains(t, text, models.KeyStatusConnected)
	assert.NotContains(t, text, models.KeyStatusDisconnected)
}

func TestMainPage_ApplyTogglesEditing(t *testing.T) {
	t.Parallel()

	status := &fakeStatus{ch: make(chan models.Status), st: models.Status{State: models.StateDisconnected}}
	m := buildMainPage(tview.NewApplication(), tview.NewPages(), Options{
		Bindings: newFakeBindings(),
		Status:   status,
	})

	for _, btn := range m.keys {
		assert.True(t, btn.IsDisabled())
	}

	m.apply(models.Status{State: models.StateConnected, Endpoint: "COM4"})
	for _, btn := range m.keys {
		assert.False(t, btn.IsDisabled())
	}
	assert.Equal(t, "Connected: COM4", m.status.GetText(true))
}

func TestMainPage_TickOnlyWhileConnecting(t *testing.T) {
	t.Parallel()

	status := &fakeStatus{ch: make(chan models.Status), st: models.Status{State: models.StateConnecting}}
	m := buildMainPage(tview.NewApplication(), tview.NewPages(), Options{
		Bindings: newFakeBindings(),
		Status:   status,
	})

	text, ok := m.tick()
	require.True(t, ok)
	assert.Equal(t, "Connecting..", text)

	m.apply(models.Status{State: models.StateConnected, Endpoint: "COM4"})
	_, ok = m.tick()
	assert.False(t, ok)
}

func TestMainPage_LabelsShowBindings(t *testing.T) {
	t.Parallel()

	b := newFakeBindings()
	b.m["Button 7 pressed"] = "firefox"
	m := buildMainPage(tview.NewApplication(), tview.NewPages(), Options{
		Bindings: b,
		Status:   &fakeStatus{ch: make(chan models.Status)},
	})

	assert.Equal(t, "7: firefox", m.keys[7].GetLabel())
	assert.Equal(t, "1: EMPTY", m.keys[1].GetLabel())
}

func TestMainPage_QuitRunsHook(t *testing.T) {
	t.Parallel()

	called := false
	m := buildMainPage(tview.NewApplication(), tview.NewPages(), Options{
		Bindings: newFakeBindings(),
		Status:   &fakeStatus{ch: make(chan models.Status)},
		OnQuit:   func() { called = true },
	})

	m.quit()
	assert.True(t, called)
}

func TestAnalyzerArgs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, analyzerArgs("", "", "", ""))
	assert.Equal(t,
		[]string{"--file", "/logs/macropad.log", "--type", "error", "--keyword", "serial"},
		analyzerArgs("/logs/macropad.log", "error", " ", "serial"),
	)
	assert.Equal(t, []string{"--date", "2026-10-14"}, analyzerArgs("", "", "2026-10-14", ""))
}

func TestRunAnalyzer(t *testing.T) {
	t.Parallel()

	executor := &mocks.MockCommandExecutor{}
	executor.On("Output", mock.Anything, "/bin/macropad-logs", []string{"--type", "warn"}).
		Return([]byte("summary"), nil)

	out := runAnalyzer(context.Background(), executor, "/bin/macropad-logs", []string{"--type", "warn"})
	assert.Equal(t, "summary", out)
	executor.AssertExpectations(t)
}

func TestRunAnalyzer_StartFailure(t *testing.T) {
	t.Parallel()

	executor := &mocks.MockCommandExecutor{}
	executor.On("Output", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, exec.ErrNotFound)

	out := runAnalyzer(context.Background(), executor, "missing", nil)
	assert.Contains(t, out, "failed to run")
}
