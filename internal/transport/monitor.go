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

import zmq "github.com/pebbe/zmq4"

// Event is a connection-lifecycle notification read off a monitor
// socket. Origin is the peer address libzmq reports, not a worker or
// client identity — useful for log correlation only.
type Event struct {
	Kind   EventKind
	Origin string
}

// EventKind mirrors the two zmq.Event values the broker tracks.
// Everything else bind_router_connection never subscribes to.
type EventKind int

const (
	EventHandshakeSucceeded EventKind = iota
	EventDisconnected
	EventOther
)

func readMonitorEvent(sock *zmq.Socket) (Event, error) {
	raw, addr, _, err := sock.RecvEvent(0)
	if err != nil {
		return Event{}, errIO("recv monitor event", err)
	}
	kind := EventOther
	switch raw {
	case zmq.EVENT_HANDSHAKE_SUCCEEDED:
		kind = EventHandshakeSucceeded
	case zmq.EVENT_DISCONNECTED:
		kind = EventDisconnected
	}
	return Event{Kind: kind, Origin: addr}, nil
}

func (k EventKind) String() string {
	switch k {
	case EventHandshakeSucceeded:
		return "HANDSHAKE_SUCCEEDED"
	case EventDisconnected:
		return "DISCONNECTED"
	default:
		return "OTHER"
	}
}
