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

// Package mdpworker is a reference MDP/Worker v2 peer: connect, READY,
// answer REQUESTs through a pluggable Handler, HEARTBEAT on its own
// ticker, and reconnect with backoff after a transport error or a
// DISCONNECT from the broker. It ignores the broker's heartbeats, so a
// broker that goes silent without either is not detected. It exists
// to exercise internal/broker end-to-end; nothing in internal/broker
// imports it.
package mdpworker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"majordomo/internal/logger"
	"majordomo/internal/mdp"
	"majordomo/internal/transport"

	"github.com/rs/zerolog"
	zmq "github.com/pebbe/zmq4"
)

// Handler answers one request body and returns the reply body, or an
// error to have the worker log it and answer with an empty body rather
// than crash — a worker process dying mid-request is exactly the
// failure the broker's liveness sweep exists to detect.
type Handler func(request []byte) ([]byte, error)

// State is the worker's connection lifecycle, mirroring the teacher's
// WorkerState enum (internal/hermes/worker.go).
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Stats is a snapshot of what the worker has done, read-only outside
// the worker's own goroutines via GetStats.
type Stats struct {
	State           string    `json:"state"`
	RequestsHandled int       `json:"requests_handled"`
	RequestsFailed  int       `json:"requests_failed"`
	HeartbeatsSent  int       `json:"heartbeats_sent"`
	Reconnections   int       `json:"reconnections"`
	LastRequestAt   time.Time `json:"last_request_at"`
	StartedAt       time.Time `json:"started_at"`
}

// Worker is one MDP/Worker v2 peer.
type Worker struct {
	brokerAddr string
	service    string
	handler    Handler

	heartbeatInterval time.Duration
	reconnectBase     time.Duration
	maxReconnectDelay time.Duration

	zctx *zmq.Context
	peer *transport.Peer

	log zerolog.Logger

	mu                sync.RWMutex
	state             State
	stats             Stats
	reconnectAttempts int
}

// New creates a worker that will connect to brokerAddr and register
// for service. Call Run to start it.
func New(brokerAddr, service string, handler Handler) *Worker {
	return &Worker{
		brokerAddr:        brokerAddr,
		service:           service,
		handler:           handler,
		heartbeatInterval: 2500 * time.Millisecond,
		reconnectBase:     1 * time.Second,
		maxReconnectDelay: 60 * time.Second,
		log:               logger.Component("worker:" + service),
		state:             StateDisconnected,
		stats:             Stats{StartedAt: time.Now()},
	}
}

// GetStats returns a snapshot of the worker's counters.
func (w *Worker) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.stats
	s.State = w.state.String()
	return s
}

// Run connects and processes broker traffic until ctx is canceled. It
// reconnects with jittered exponential backoff on any transport error.
func (w *Worker) Run(ctx context.Context) error {
	zctx, err := zmq.NewContext()
	if err != nil {
		return err
	}
	w.zctx = zctx
	defer zctx.Term()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.connectAndServe(ctx); err != nil {
			w.log.Warn().Err(err).Msg("worker session ended, reconnecting")
		}
		if ctx.Err() != nil {
			return nil
		}
		if !w.backoff(ctx) {
			return nil
		}
	}
}

func (w *Worker) connectAndServe(ctx context.Context) error {
	w.setState(StateConnecting)
	peer, err := transport.NewDealer(w.zctx, w.brokerAddr, "")
	if err != nil {
		return err
	}
	w.peer = peer
	defer func() {
		peer.Close()
		w.peer = nil
	}()

	if err := w.sendReady(); err != nil {
		return err
	}
	w.setState(StateReady)
	w.resetBackoff()
	w.log.Info().Str("broker", w.brokerAddr).Str("service", w.service).Msg("worker ready")

	nextHeartbeat := time.Now().Add(w.heartbeatInterval)

	for {
		if ctx.Err() != nil {
			return nil
		}

		wait := time.Until(nextHeartbeat)
		if wait < 0 {
			wait = 0
		}
		frames, ok, err := peer.RecvTimeout(wait)
		if err != nil {
			return err
		}
		if !ok {
			if err := w.sendHeartbeat(); err != nil {
				return err
			}
			nextHeartbeat = time.Now().Add(w.heartbeatInterval)
			continue
		}

		msg, err := mdp.DecodeWorkerMessage(frames)
		if err != nil {
			w.log.Warn().Err(err).Msg("malformed frame from broker, ignoring")
			continue
		}
		if err := w.handle(msg); err != nil {
			return err
		}
	}
}

func (w *Worker) handle(msg *mdp.WorkerMessage) error {
	switch msg.Command {
	case mdp.WorkerRequest:
		w.mu.Lock()
		w.stats.RequestsHandled++
		w.stats.LastRequestAt = time.Now()
		w.mu.Unlock()

		var body []byte
		if len(msg.Body) > 0 {
			body = msg.Body[0]
		}
		reply, err := w.handler(body)
		if err != nil {
			w.mu.Lock()
			w.stats.RequestsFailed++
			w.mu.Unlock()
			w.log.Error().Err(err).Msg("handler error")
			reply = nil
		}
		return w.sendReply(msg.Envelope, reply)

	case mdp.WorkerHeartbeat:
		return nil

	case mdp.WorkerDisconnect:
		return errDisconnectedByBroker

	default:
		w.log.Debug().Str("command", msg.Command.String()).Msg("ignoring unexpected command")
		return nil
	}
}

func (w *Worker) sendReady() error {
	frame := [][]byte{[]byte(mdp.WorkerHeader), {byte(mdp.WorkerReady)}, []byte(w.service)}
	return w.peer.Send(frame)
}

func (w *Worker) sendHeartbeat() error {
	if err := w.peer.Send(mdp.EncodeWorkerHeartbeat()); err != nil {
		return err
	}
	w.mu.Lock()
	w.stats.HeartbeatsSent++
	w.mu.Unlock()
	return nil
}

// sendReply answers with FINAL — this reference worker never streams
// PARTIAL chunks, since Handler is request/response.
func (w *Worker) sendReply(envelope [][]byte, body []byte) error {
	frame := make([][]byte, 0, 2+len(envelope)+2)
	frame = append(frame, []byte(mdp.WorkerHeader), []byte{byte(mdp.WorkerFinal)})
	frame = append(frame, envelope...)
	frame = append(frame, []byte(""))
	if body != nil {
		frame = append(frame, body)
	}
	return w.peer.Send(frame)
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Worker) resetBackoff() {
	w.mu.Lock()
	w.reconnectAttempts = 0
	w.mu.Unlock()
}

// backoff sleeps a jittered exponential delay before the next
// reconnect attempt, matching the teacher's reconnectToBroker shape. It
// reports false if ctx was canceled during the wait.
func (w *Worker) backoff(ctx context.Context) bool {
	w.mu.Lock()
	w.state = StateReconnecting
	w.stats.Reconnections++
	w.reconnectAttempts++
	attempt := w.reconnectAttempts
	w.mu.Unlock()

	delay := w.reconnectBase * time.Duration(1<<uint(attempt-1))
	if delay > w.maxReconnectDelay {
		delay = w.maxReconnectDelay
	}
	delay += time.Duration(rand.Int63n(int64(w.reconnectBase)))

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
