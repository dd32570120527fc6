// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package broker implements the Majordomo broker's reactor: a single
// goroutine that polls the client and worker endpoints, dispatches
// whatever arrived, and runs a liveness tick. The reactor goroutine is
// the only writer of registry, stats, and nextHeartbeatDue; the optional
// admin HTTP goroutine only ever reads them through a snapshot guarded
// by Broker.mu.
package broker

import (
	"context"
	"sync"
	"time"

	"majordomo/internal/logger"
	"majordomo/internal/mdp"
	"majordomo/internal/registry"
	"majordomo/internal/transport"

	"github.com/rs/zerolog"
	zmq "github.com/pebbe/zmq4"
)

// Broker is the reactor: bound sockets, the worker registry, and the
// counters the admin surface reads. The reactor goroutine is the only
// writer of registry/stats/nextHeartbeatDue; it holds mu's write lock
// around each handler and each liveness tick so that the optional admin
// HTTP goroutine can take a consistent read-locked snapshot without
// racing it — the same narrow purpose the teacher's broker.go uses its
// RWMutex for in GetStats/GetServices/GetWorkers.
type Broker struct {
	config Config
	log    zerolog.Logger

	zctx    *zmq.Context
	clients *transport.Endpoint
	workers *transport.Endpoint
	poller  *transport.Poller

	mu               sync.RWMutex
	registry         *registry.Registry
	nextHeartbeatDue map[mdp.Identity]time.Time
	stats            Stats

	admin *adminServer
}

// New creates the broker's sockets and registry but does not start the
// reactor loop; call Run to do that.
func New(cfg Config) (*Broker, error) {
	zctx, err := zmq.NewContext()
	if err != nil {
		return nil, errSetup("create zmq context", err)
	}

	clients, err := transport.NewEndpoint(zctx, "clients", cfg.ClientBindAddr)
	if err != nil {
		zctx.Term()
		return nil, err
	}
	workers, err := transport.NewEndpoint(zctx, "workers", cfg.WorkerBindAddr)
	if err != nil {
		clients.Close()
		zctx.Term()
		return nil, err
	}

	b := &Broker{
		config:           cfg,
		log:              logger.Component("broker"),
		zctx:             zctx,
		clients:          clients,
		workers:          workers,
		poller:           transport.NewPoller(clients, workers),
		registry:         registry.New(cfg.Expiry()),
		nextHeartbeatDue: make(map[mdp.Identity]time.Time),
	}

	if cfg.AdminBindAddr != "" {
		b.admin = newAdminServer(cfg.AdminBindAddr, b)
	}

	return b, nil
}

// errSetup is reused from the transport package's error shape for the
// one setup failure that originates above the transport layer: the
// zmq.Context itself.
func errSetup(op string, err error) error {
	return &transport.SetupError{Op: op, Err: err}
}

// Run drives the reactor until ctx is canceled. It always closes its
// sockets before returning, even on error.
func (b *Broker) Run(ctx context.Context) error {
	b.log.Info().
		Str("clients", b.config.ClientBindAddr).
		Str("workers", b.config.WorkerBindAddr).
		Msg("broker reactor starting")

	if b.admin != nil {
		if err := b.admin.start(); err != nil {
			b.log.Error().Err(err).Msg("admin surface failed to start, continuing without it")
		} else {
			defer b.admin.stop(context.Background())
		}
	}

	defer b.close()

	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("broker reactor stopping")
			return nil
		default:
		}

		ready, err := b.poller.Poll(b.config.PollTimeout)
		if err != nil {
			b.log.Error().Err(err).Msg("poll failed")
			return err
		}

		now := time.Now()

		// Fixed order per the four-way reactor loop: client data,
		// client monitor, worker data, worker monitor, then a liveness
		// tick every iteration regardless of what else ran.
		if ready.ClientData {
			b.mu.Lock()
			if frames, err := b.clients.RecvFrames(); err == nil {
				b.handleClientFrames(frames)
			} else {
				b.log.Warn().Err(err).Msg("client recv failed")
			}
			b.mu.Unlock()
		}
		if ready.ClientMonitor {
			b.logMonitorEvent("client", b.clients)
		}
		if ready.WorkerData {
			b.mu.Lock()
			if frames, err := b.workers.RecvFrames(); err == nil {
				b.handleWorkerFrames(frames, now)
			} else {
				b.log.Warn().Err(err).Msg("worker recv failed")
			}
			b.mu.Unlock()
		}
		if ready.WorkerMonitor {
			b.logMonitorEvent("worker", b.workers)
		}

		b.mu.Lock()
		b.livenessTick(now)
		b.mu.Unlock()
	}
}

// logMonitorEvent handles a HANDSHAKE_SUCCEEDED/DISCONNECTED event from
// an endpoint's monitor socket. Both are logged only: a worker's
// disconnect is acted on via its own DISCONNECT frame or the liveness
// sweep, never the transport-level event alone (see DESIGN.md's Open
// Question 2 resolution).
func (b *Broker) logMonitorEvent(side string, ep *transport.Endpoint) {
	event, err := ep.ReadMonitorEvent()
	if err != nil {
		b.log.Warn().Err(err).Str("side", side).Msg("monitor recv failed")
		return
	}
	switch event.Kind {
	case transport.EventHandshakeSucceeded:
		b.log.Info().Str("side", side).Str("origin", event.Origin).Msg("peer connected")
	case transport.EventDisconnected:
		b.log.Info().Str("side", side).Str("origin", event.Origin).Msg("peer transport disconnected")
	default:
		b.log.Debug().Str("side", side).Str("origin", event.Origin).Msg("unrecognized monitor event")
	}
}

func (b *Broker) sendFrames(ep *transport.Endpoint, frames [][]byte) {
	if err := ep.SendFrames(frames); err != nil {
		b.log.Warn().Err(err).Msg("send failed")
	}
}

func (b *Broker) close() {
	b.clients.Close()
	b.workers.Close()
	b.zctx.Term()
}
