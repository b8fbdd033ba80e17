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

package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers"
	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	// readTimeout bounds each ReadLine call.
	readTimeout = 5 * time.Millisecond
	readChunk   = 256
	// maxLineLen drops runaway input from a device that never sends '\n'.
	maxLineLen = 4096
)

// SerialPort is the subset of serial.Port used here (for mocking in tests).
type SerialPort interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// SerialPortFactory creates a serial port connection.
type SerialPortFactory func(path string, mode *serial.Mode) (SerialPort, error)

// DefaultSerialPortFactory opens real serial ports.
func DefaultSerialPortFactory(path string, mode *serial.Mode) (SerialPort, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// handle is an open port plus a flag recording whether it is still usable.
// The flag is cleared by Close and by any I/O error on the port.
type handle struct {
	port   SerialPort
	closed atomic.Bool
}

func (h *handle) isOpen() bool {
	return !h.closed.Load()
}

// settle waits for d or until ctx is done.
func settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // wrapped by Open
	case <-timer.C:
		return nil
	}
}

// Serial is a Transport over a go.bug.st/serial port.
type Serial struct {
	portFactory SerialPortFactory
	listPorts   func(config.Device) ([]string, error)
	settle      func(context.Context, time.Duration) error
	cfg         *config.Instance
	h           *handle
	endpoint    string
	buf         []byte
	chunk       []byte
	mu          syncutil.Mutex // protects h, endpoint, connected
	readMu      syncutil.Mutex // protects buf, chunk
	writeMu     syncutil.Mutex
	connected   bool
}

// NewSerial returns a closed serial transport using the port settings in
// cfg.
func NewSerial(cfg *config.Instance) *Serial {
	return &Serial{
		cfg:         cfg,
		portFactory: DefaultSerialPortFactory,
		listPorts:   helpers.GetSerialDeviceList,
		settle:      settle,
		chunk:       make([]byte, readChunk),
	}
}

func mode(dev config.Device) *serial.Mode { //nolint:gocritic // device config copied by value
	m := &serial.Mode{
		BaudRate: dev.BaudRate,
		DataBits: dev.DataBits,
	}

	switch strings.ToUpper(dev.Parity) {
	case config.ParityEven:
		m.Parity = serial.EvenParity
	case config.ParityOdd:
		m.Parity = serial.OddParity
	default:
		m.Parity = serial.NoParity
	}

	if dev.StopBits == 2 {
		m.StopBits = serial.TwoStopBits
	} else {
		m.StopBits = serial.OneStopBit
	}

	return m
}

// ListEndpoints returns the configured ports, or detected ones if none are
// configured.
func (s *Serial) ListEndpoints() ([]string, error) {
	return s.listPorts(s.cfg.Device())
}

// Open connects to endpoint. Cancelling ctx aborts the settle wait, closes
// the port and returns the context error.
func (s *Serial) Open(ctx context.Context, endpoint string) error {
	if s.IsConnected() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing previous port before reopen")
		}
	}

	if runtime.GOOS != "windows" {
		if _, err := os.Stat(endpoint); err != nil {
			return fmt.Errorf("failed to stat device path %s: %w", endpoint, err)
		}
	}

	port, err := s.portFactory(endpoint, mode(s.cfg.Device()))
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", endpoint, err)
	}

	fail := func(err error) error {
		if closeErr := port.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msgf("failed to close port %s after setup error", endpoint)
		}
		return err
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		return fail(fmt.Errorf("failed to set read timeout on %s: %w", endpoint, err))
	}

	// Many boards reset when the port opens and print boot noise; wait for
	// that to finish and throw it away before listening.
	if d := s.cfg.SettleDelay(); d > 0 {
		if err := s.settle(ctx, d); err != nil {
			return fail(fmt.Errorf("open of %s cancelled: %w", endpoint, err))
		}
	}
	if err := port.ResetInputBuffer(); err != nil {
		return fail(fmt.Errorf("failed to flush input on %s: %w", endpoint, err))
	}

	s.readMu.Lock()
	s.buf = s.buf[:0]
	s.readMu.Unlock()

	s.mu.Lock()
	s.h = &handle{port: port}
	s.endpoint = endpoint
	s.connected = true
	s.mu.Unlock()

	log.Info().Msgf("connected to %s", endpoint)
	return nil
}

// IsConnected reports whether a usable port is held.
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h != nil && s.h.isOpen() && s.connected
}

// Endpoint returns the open port path, or "".
func (s *Serial) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// active returns the current handle if connected.
func (s *Serial) active() *handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h == nil || !s.h.isOpen() || !s.connected {
		return nil
	}
	return s.h
}

// invalidate closes the connection after an I/O error on h. A handle from
// an earlier connection is ignored so a late error can't drop a newer one.
func (s *Serial) invalidate(h *handle) {
	h.closed.Store(true)

	s.mu.Lock()
	current := s.h == h
	s.mu.Unlock()

	if !current {
		return
	}
	if err := s.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing serial port after i/o error")
	}
}

// Write sends data to the device, closing the port on error.
func (s *Serial) Write(data []byte) error {
	h := s.active()
	if h == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	_, err := h.port.Write(data)
	s.writeMu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("error writing to serial port")
		s.invalidate(h)
		return fmt.Errorf("failed to write to serial port: %w", err)
	}

	log.Info().Msgf("sent to device: %s", strings.TrimSpace(string(data)))
	return nil
}

// takeLine pops the first complete line off buf. Caller holds readMu.
func (s *Serial) takeLine() (string, bool) {
	i := bytes.IndexByte(s.buf, '\n')
	if i < 0 {
		return "", false
	}
	raw := string(s.buf[:i])
	s.buf = append(s.buf[:0], s.buf[i+1:]...)
	return strings.TrimSpace(strings.ToValidUTF8(raw, "")), true
}

// ReadLine returns the next complete line from the device, if any.
func (s *Serial) ReadLine() (string, bool) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	if line, ok := s.takeLine(); ok {
		return line, true
	}

	h := s.active()
	if h == nil {
		return "", false
	}

	n, err := h.port.Read(s.chunk)
	if err != nil {
		log.Error().Err(err).Msg("serial read error")
		s.buf = s.buf[:0]
		s.invalidate(h)
		return "", false
	}
	if n == 0 {
		return "", false
	}

	s.buf = append(s.buf, s.chunk[:n]...)
	line, ok := s.takeLine()
	if !ok && len(s.buf) > maxLineLen {
		log.Warn().Msgf("discarding %d bytes without line terminator", len(s.buf))
		s.buf = s.buf[:0]
	}
	if ok {
		log.Debug().Msgf("received from serial: %s", line)
	}
	return line, ok
}

// Close releases the port. Calling it while closed is a no-op.
func (s *Serial) Close() error {
	s.mu.Lock()
	h := s.h
	endpoint := s.endpoint
	s.h = nil
	s.endpoint = ""
	s.connected = false
	s.mu.Unlock()

	if h == nil {
		return nil
	}

	h.closed.Store(true)
	if err := h.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", endpoint, err)
	}

	log.Info().Msgf("serial port %s closed", endpoint)
	return nil
}
