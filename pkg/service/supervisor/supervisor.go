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

// Package supervisor owns the device connection: it tries endpoints,
// reconnects with exponential backoff and runs the line listener while a
// connection is up.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/ZaparooProject/macropad/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// maxLinesPerTick bounds how many buffered lines one listener wake handles.
const maxLinesPerTick = 64

// LineHandler receives every line read from the device.
type LineHandler func(line string)

// Supervisor keeps the transport connected and a listener running on it.
type Supervisor struct {
	clock        clockwork.Clock
	ctx          context.Context
	transport    transport.Transport
	cfg          *config.Instance
	cancel       context.CancelFunc
	onLine       LineHandler
	statusSend   chan<- models.Status
	backoff      *Backoff
	done         chan struct{}
	listenCancel context.CancelFunc
	listenDone   chan struct{}
	status       models.Status
	mu           syncutil.Mutex
	started      bool
	listening    bool
}

// New creates a stopped supervisor. Status transitions are sent to
// statusSend without blocking; a nil channel disables them. A nil clock
// uses the real clock.
func New(
	cfg *config.Instance,
	tr transport.Transport,
	onLine LineHandler,
	statusSend chan<- models.Status,
	clock clockwork.Clock,
) *Supervisor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if onLine == nil {
		onLine = func(string) {}
	}

	floor, ceiling := cfg.RetryBounds()
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		clock:      clock,
		ctx:        ctx,
		cancel:     cancel,
		transport:  tr,
		cfg:        cfg,
		onLine:     onLine,
		statusSend: statusSend,
		backoff:    NewBackoff(floor, ceiling),
		done:       make(chan struct{}),
		status: models.Status{
			State: models.StateDisconnected,
			Time:  clock.Now(),
		},
	}
}

// Start launches the supervision loop. Calling it more than once has no
// effect.
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	log.Info().Msg("starting connection supervisor")
	go s.run()
}

// Stop halts the supervision loop at its next sleep boundary and waits for
// it and the listener to exit. An in-progress open finishes taking its
// handle but gives up its settle wait and releases the port. Safe to call
// multiple times.
func (s *Supervisor) Stop() {
	s.cancel()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
	s.stopListener()
}

// Status returns the most recent connection state.
func (s *Supervisor) Status() models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Supervisor) run() {
	defer close(s.done)

	for {
		if s.ctx.Err() != nil {
			return
		}

		wait := s.safeStep()

		select {
		case <-s.ctx.Done():
			log.Debug().Msg("supervisor: stop requested")
			return
		case <-s.clock.After(wait):
		}
	}
}

// safeStep runs one cycle and turns a panic into a logged error.
func (s *Supervisor) safeStep() (wait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("panic in supervisor cycle: %v", r)
			wait = s.cfg.PollInterval()
		}
	}()
	return s.step()
}

// step runs one supervision cycle and returns how long to sleep before the
// next one.
func (s *Supervisor) step() time.Duration {
	if s.transport.IsConnected() {
		s.startListener()
		return s.cfg.PollInterval()
	}

	if s.Status().State == models.StateConnected {
		log.Warn().Msgf("lost connection to %s", s.Status().Endpoint)
	}
	s.stopListener()
	s.setStatus(models.StateConnecting, "", 0)

	if endpoint, ok := s.connect(); ok {
		s.backoff.Reset()
		s.startListener()
		s.setStatus(models.StateConnected, endpoint, 0)
		return s.cfg.PollInterval()
	}

	wait := s.backoff.Next()
	log.Debug().Msgf("no device connected, retrying in %s", wait)
	s.setStatus(models.StateDisconnected, "", wait)
	return wait
}

// connect tries each endpoint in order and stops at the first that opens.
func (s *Supervisor) connect() (string, bool) {
	endpoints, err := s.transport.ListEndpoints()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list serial endpoints")
		return "", false
	}

	for _, endpoint := range endpoints {
		if s.ctx.Err() != nil {
			return "", false
		}
		if err := s.transport.Open(s.ctx, endpoint); err != nil {
			log.Debug().Err(err).Msgf("could not open %s", endpoint)
			continue
		}
		return endpoint, true
	}
	return "", false
}

func (s *Supervisor) setStatus(state models.ConnectionState, endpoint string, retryIn time.Duration) {
	st := models.Status{
		State:    state,
		Endpoint: endpoint,
		RetryIn:  retryIn,
		Time:     s.clock.Now(),
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	if s.statusSend == nil {
		return
	}
	select {
	case s.statusSend <- st:
	default:
		log.Warn().Str("state", state.String()).Msg("status channel full, dropping update")
	}
}

// startListener spawns the line listener unless one is already running.
func (s *Supervisor) startListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listening || s.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	s.listening = true
	s.listenCancel = cancel
	s.listenDone = done

	go s.listen(ctx, done)
}

// stopListener cancels the listener and waits for it to exit, clearing the
// guard so the next connection gets a fresh one.
func (s *Supervisor) stopListener() {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}
	cancel := s.listenCancel
	done := s.listenDone
	s.listening = false
	s.listenCancel = nil
	s.listenDone = nil
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Supervisor) listen(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	log.Debug().Msg("listener started")

	ticker := time.NewTicker(s.cfg.ListenInterval())
	defer ticker.Stop()

	for {
		for range maxLinesPerTick {
			line, ok := s.transport.ReadLine()
			if !ok {
				break
			}
			s.dispatch(line)
		}

		select {
		case <-ctx.Done():
			log.Debug().Msg("listener stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) dispatch(line string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Err(fmt.Errorf("%v", r)).Msgf("panic handling line: %q", line)
		}
	}()
	s.onLine(line)
}
