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

// Package broker fans connection status updates out to any number of
// consumers without letting a slow consumer stall the supervisor.
package broker

import (
	"context"

	"github.com/ZaparooProject/macropad/pkg/helpers/syncutil"
	"github.com/ZaparooProject/macropad/pkg/models"
	"github.com/rs/zerolog/log"
)

// Broker reads status updates from a source channel and broadcasts them.
// The most recent status is retained so late subscribers start from the
// current state instead of waiting for the next transition.
type Broker struct {
	ctx         context.Context
	source      <-chan models.Status
	subscribers map[int]chan models.Status
	latest      models.Status
	done        chan struct{}
	mu          syncutil.RWMutex
	nextID      int
	hasLatest   bool
}

// NewBroker returns a broker over source. It does nothing until Start.
func NewBroker(ctx context.Context, source <-chan models.Status) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan models.Status),
		done:        make(chan struct{}),
	}
}

// Start runs the broadcast loop until the source closes or the context is
// cancelled, then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		defer close(b.done)
		for {
			select {
			case st, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(st)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

// Done is closed once the broadcast loop has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) broadcast(st models.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = st
	b.hasLatest = true
	for id, ch := range b.subscribers {
		select {
		case ch <- st:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("state", st.State.String()).
				Msg("subscriber channel full, dropping status")
		}
	}
}

// Subscribe registers a new consumer. If a status has already been seen it
// is queued on the returned channel immediately.
func (b *Broker) Subscribe(bufferSize int) (statusChan <-chan models.Status, id int) {
	if bufferSize < 1 {
		bufferSize = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	ch := make(chan models.Status, bufferSize)
	if b.hasLatest {
		ch <- b.latest
	}
	b.subscribers[id] = ch

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Msg("new status subscriber registered")

	return ch, id
}

// Latest returns the last broadcast status, if any.
func (b *Broker) Latest() (models.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.hasLatest
}

// Unsubscribe removes a subscription and closes its channel. Unknown IDs
// are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("status subscriber unsubscribed")
	}
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("closed status subscriber on shutdown")
	}
	b.subscribers = make(map[int]chan models.Status)
}
