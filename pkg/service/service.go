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

// Package service wires the transport, connection supervisor, dispatch
// table and action runner into one running unit.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZaparooProject/macropad/pkg/bindings"
	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/ZaparooProject/macropad/pkg/helpers/command"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/ZaparooProject/macropad/pkg/service/actions"
	"github.com/ZaparooProject/macropad/pkg/service/broker"
	"github.com/ZaparooProject/macropad/pkg/service/macros"
	"github.com/ZaparooProject/macropad/pkg/service/supervisor"
	"github.com/ZaparooProject/macropad/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// statusQueueSize is the supervisor to broker buffer.
const statusQueueSize = 32

var errNoConfig = errors.New("config is required")

// Options overrides the real collaborators. Zero values use the serial
// transport, the OS filesystem, real process spawning and the real clock.
type Options struct {
	Transport transport.Transport
	Fs        afero.Fs
	Executor  command.Executor
	Clock     clockwork.Clock
}

// Service wires the supervisor, dispatch table and status broker together.
type Service struct {
	cfg        *config.Instance
	transport  transport.Transport
	cancel     context.CancelFunc
	Macros     *macros.Table
	supervisor *supervisor.Supervisor
	broker     *broker.Broker
	done       chan struct{}
	stopErr    error
	stopOnce   sync.Once
}

// OpenTable builds a dispatch table over the configured binding file
// without starting any background work. Used for offline edits.
func OpenTable(cfg *config.Instance, opts Options) (*macros.Table, transport.Transport) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	tr := opts.Transport
	if tr == nil {
		tr = transport.NewSerial(cfg)
	}

	store := bindings.NewStore(fs, cfg.MacrosPath())
	log.Info().Msgf("loaded bindings from %s", store.Path())
	return macros.NewTable(cfg, store, tr, actions.NewRunner(opts.Executor)), tr
}

// Start loads bindings and starts supervising the device connection.
func Start(cfg *config.Instance, opts Options) (*Service, error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	if cfg == nil {
		return nil, fmt.Errorf("failed to start service: %w", errNoConfig)
	}

	table, tr := OpenTable(cfg, opts)

	ctx, cancel := context.WithCancel(context.Background())
	statusQueue := make(chan models.Status, statusQueueSize)

	statusBroker := broker.NewBroker(ctx, statusQueue)
	statusBroker.Start()

	sup := supervisor.New(cfg, tr, func(line string) {
		table.HandleLine(line)
	}, statusQueue, opts.Clock)
	sup.Start()

	return &Service{
		cancel:     cancel,
		cfg:        cfg,
		transport:  tr,
		Macros:     table,
		supervisor: sup,
		broker:     statusBroker,
		done:       make(chan struct{}),
	}, nil
}

// Stop halts supervision, closes the device if it is still open and shuts
// down status delivery. Safe to call more than once.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.shutdown()
		close(s.done)
	})
	return s.stopErr
}

func (s *Service) shutdown() error {
	var g errgroup.Group
	g.Go(func() error {
		s.supervisor.Stop()
		if !s.transport.IsConnected() {
			return nil
		}
		log.Info().Msg("closing device connection")
		if err := s.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.cancel()
		<-s.broker.Done()
		return nil
	})

	err := g.Wait()
	log.Info().Msg("service stopped")
	if err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}

// Done is closed once Stop has completed.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Status returns the current connection state.
func (s *Service) Status() models.Status {
	return s.supervisor.Status()
}

// Subscribe returns a channel of connection status updates starting with
// the current status, if known.
func (s *Service) Subscribe(bufferSize int) (<-chan models.Status, int) {
	return s.broker.Subscribe(bufferSize)
}

// Unsubscribe closes the channel returned by Subscribe for id.
func (s *Service) Unsubscribe(id int) {
	s.broker.Unsubscribe(id)
}

// KeyStatus reports, for every key's event name, whether it can be edited
// on the device right now.
func (s *Service) KeyStatus() map[string]string {
	return KeyStatus(s.Status())
}

// KeyStatus reports the edit status of every key for st.
func KeyStatus(st models.Status) map[string]string {
	value := models.KeyStatusDisconnected
	if st.EditingEnabled() {
		value = models.KeyStatusConnected
	}

	out := make(map[string]string, bindings.NumKeys)
	for _, k := range bindings.AllKeys() {
		out[k.EventName()] = value
	}
	return out
}
