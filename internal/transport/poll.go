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

package transport

import (
	"time"

	zmq "github.com/pebbe/zmq4"
)

// Poller multiplexes the broker's four sockets in the fixed order
// rustydomo's reactor uses: client data, client monitor, worker data,
// worker monitor. Readiness only reports which sockets had input
// pending; the broker's reactor loop is what actually services them in
// that order each tick.
type Poller struct {
	poller *zmq.Poller
}

// Readiness reports which of the four registered sockets had POLLIN
// set after a Poll call.
type Readiness struct {
	ClientData    bool
	ClientMonitor bool
	WorkerData    bool
	WorkerMonitor bool
}

// NewPoller registers clients' and workers' router and monitor sockets,
// in that fixed order.
func NewPoller(clients, workers *Endpoint) *Poller {
	p := zmq.NewPoller()
	p.Add(clients.RouterSocket(), zmq.POLLIN)
	p.Add(clients.MonitorSocket(), zmq.POLLIN)
	p.Add(workers.RouterSocket(), zmq.POLLIN)
	p.Add(workers.MonitorSocket(), zmq.POLLIN)
	return &Poller{poller: p}
}

// Poll blocks until a socket is ready or timeout elapses, whichever
// comes first. A timeout is not an error: it's the reactor's signal to
// run its liveness tick.
func (p *Poller) Poll(timeout time.Duration) (Readiness, error) {
	// PollAll, unlike Poll, returns every socket in registration order,
	// so the index below identifies the socket.
	polled, err := p.poller.PollAll(timeout)
	if err != nil {
		return Readiness{}, errIO("poll", err)
	}
	var r Readiness
	for i, item := range polled {
		if item.Events&zmq.POLLIN == 0 {
			continue
		}
		switch i {
		case 0:
			r.ClientData = true
		case 1:
			r.ClientMonitor = true
		case 2:
			r.WorkerData = true
		case 3:
			r.WorkerMonitor = true
		}
	}
	return r, nil
}
