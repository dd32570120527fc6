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

// Peer is the client/worker side of the wire: a single DEALER socket
// connected to the broker. Unlike Endpoint it has no monitor — sample
// workers and clients reconnect on a send/recv error instead of
// reacting to transport-level events.
type Peer struct {
	sock *zmq.Socket
}

// NewDealer connects a DEALER socket to addr. A non-empty identity
// pins the socket's wire identity; an empty one lets ZeroMQ assign
// one, which is what the sample worker and client both do.
func NewDealer(ctx *zmq.Context, addr, identity string) (*Peer, error) {
	sock, err := ctx.NewSocket(zmq.DEALER)
	if err != nil {
		return nil, errSetup("create dealer socket", err)
	}
	if identity != "" {
		if err := sock.SetIdentity(identity); err != nil {
			sock.Close()
			return nil, errSetup("set identity", err)
		}
	}
	if err := sock.Connect(addr); err != nil {
		sock.Close()
		return nil, errSetup("connect "+addr, err)
	}
	return &Peer{sock: sock}, nil
}

// Send writes one multipart message.
func (p *Peer) Send(frames [][]byte) error {
	parts := make([]interface{}, len(frames))
	for i, f := range frames {
		parts[i] = f
	}
	if _, err := p.sock.SendMessage(parts...); err != nil {
		return errIO("send", err)
	}
	return nil
}

// RecvTimeout reads one multipart message, waiting up to timeout. It
// reports ok=false (no error) on a plain timeout.
func (p *Peer) RecvTimeout(timeout time.Duration) (frames [][]byte, ok bool, err error) {
	poller := zmq.NewPoller()
	poller.Add(p.sock, zmq.POLLIN)
	polled, err := poller.Poll(timeout)
	if err != nil {
		return nil, false, errIO("poll", err)
	}
	if len(polled) == 0 || polled[0].Events&zmq.POLLIN == 0 {
		return nil, false, nil
	}
	frames, err = p.sock.RecvMessageBytes(0)
	if err != nil {
		return nil, false, errIO("recv", err)
	}
	return frames, true, nil
}

// Close releases the socket.
func (p *Peer) Close() error {
	return p.sock.Close()
}
