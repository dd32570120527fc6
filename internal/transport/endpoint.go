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

// Package transport is the broker's ZeroMQ facade. It owns every call
// into github.com/pebbe/zmq4 so the rest of the broker never imports
// zmq4 directly: the dispatcher and the registry see only frames
// ([][]byte) and typed socket-monitor events.
package transport

import (
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// trackedEvents is the pair of socket-monitor events the broker cares
// about. A worker or client connection going away without sending
// DISCONNECT is the only way the broker learns of a crashed peer before
// the heartbeat grace period expires.
const trackedEvents = zmq.EVENT_HANDSHAKE_SUCCEEDED | zmq.EVENT_DISCONNECTED

// Endpoint is a bound ROUTER socket plus the PAIR socket receiving its
// connection-lifecycle events, grounded on rustydomo's
// bind_router_connection (a ROUTER socket's monitor is itself a
// separate inproc PAIR pair).
type Endpoint struct {
	name    string
	router  *zmq.Socket
	monitor *zmq.Socket
}

// NewEndpoint creates and binds a ROUTER socket on bindAddr and wires a
// PAIR monitor socket to it over an inproc address derived from name.
func NewEndpoint(ctx *zmq.Context, name, bindAddr string) (*Endpoint, error) {
	router, err := ctx.NewSocket(zmq.ROUTER)
	if err != nil {
		return nil, errSetup("create router socket", err)
	}
	if err := router.Bind(bindAddr); err != nil {
		router.Close()
		return nil, errSetup(fmt.Sprintf("bind %s", bindAddr), err)
	}

	monitorAddr := "inproc://monitor-" + name
	if err := router.Monitor(monitorAddr, trackedEvents); err != nil {
		router.Close()
		return nil, errSetup("attach monitor", err)
	}

	monitor, err := ctx.NewSocket(zmq.PAIR)
	if err != nil {
		router.Close()
		return nil, errSetup("create monitor socket", err)
	}
	if err := monitor.Connect(monitorAddr); err != nil {
		router.Close()
		monitor.Close()
		return nil, errSetup(fmt.Sprintf("connect monitor %s", monitorAddr), err)
	}

	return &Endpoint{name: name, router: router, monitor: monitor}, nil
}

// Name identifies the endpoint in log lines ("clients", "workers").
func (e *Endpoint) Name() string { return e.name }

// RouterSocket exposes the underlying socket for Poll registration only.
func (e *Endpoint) RouterSocket() *zmq.Socket { return e.router }

// MonitorSocket exposes the underlying monitor socket for Poll
// registration only.
func (e *Endpoint) MonitorSocket() *zmq.Socket { return e.monitor }

// RecvFrames reads one multipart message from the router socket. The
// read blocks until a message arrives, so call it only after Poll
// reports the router socket ready.
func (e *Endpoint) RecvFrames() ([][]byte, error) {
	frames, err := e.router.RecvMessageBytes(0)
	if err != nil {
		return nil, errIO("recv", err)
	}
	return frames, nil
}

// SendFrames writes one multipart message to the router socket. The
// first frame must be the destination identity; ZeroMQ strips it on
// the wire and delivers the remainder to that peer.
func (e *Endpoint) SendFrames(frames [][]byte) error {
	parts := make([]interface{}, len(frames))
	for i, f := range frames {
		parts[i] = f
	}
	if _, err := e.router.SendMessage(parts...); err != nil {
		return errIO("send", err)
	}
	return nil
}

// ReadMonitorEvent reads one pending event off the monitor socket. Call
// only after Poll reports the monitor socket ready.
func (e *Endpoint) ReadMonitorEvent() (Event, error) {
	return readMonitorEvent(e.monitor)
}

// Close tears down both sockets. Order doesn't matter: neither blocks
// on the other once LINGER has elapsed.
func (e *Endpoint) Close() error {
	err1 := e.monitor.Close()
	err2 := e.router.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
