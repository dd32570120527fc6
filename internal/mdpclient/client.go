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

// Package mdpclient is a reference MDP/Client v2 peer: one REQUEST,
// then a stream of PARTIAL replies terminated by FINAL. original_source's
// lib/src/client.rs models this as a blocking Iterator; here it's a
// buffered channel of Reply values, the idiomatic Go analogue — a
// caller ranges over it instead of calling next() in a loop.
package mdpclient

import (
	"context"
	"time"

	"majordomo/internal/logger"
	"majordomo/internal/mdp"
	"majordomo/internal/transport"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zmq "github.com/pebbe/zmq4"
)

// Reply is one PARTIAL or FINAL chunk from the broker.
type Reply struct {
	Final bool
	Body  [][]byte
	Err   error
}

// Client is a single-request MDP/Client v2 peer. It's created per
// request, matching original_source's Client::send_request returning a
// fresh ClientRequest — there's no persistent session state to carry
// between requests on the wire (spec.md carries no message-ID frame).
type Client struct {
	zctx *zmq.Context
	peer *transport.Peer
	log  zerolog.Logger
}

// New connects a DEALER socket to the broker's client-facing address.
func New(brokerAddr string) (*Client, error) {
	zctx, err := zmq.NewContext()
	if err != nil {
		return nil, err
	}
	peer, err := transport.NewDealer(zctx, brokerAddr, "")
	if err != nil {
		zctx.Term()
		return nil, err
	}
	traceID := uuid.New().String()
	return &Client{zctx: zctx, peer: peer, log: logger.Component("client").With().Str("trace_id", traceID).Logger()}, nil
}

// Close tears down the socket and context. Safe to call once per Client.
func (c *Client) Close() error {
	err := c.peer.Close()
	c.zctx.Term()
	return err
}

// Request sends one REQUEST and returns a channel that yields every
// PARTIAL reply followed by the FINAL reply, then closes. pollInterval
// mirrors original_source's 100ms poll loop; ctx cancellation stops
// early and closes the channel without a final Reply.
func (c *Client) Request(ctx context.Context, service string, body [][]byte, pollInterval time.Duration) (<-chan Reply, error) {
	frame := [][]byte{[]byte(mdp.ClientHeader), {byte(mdp.ClientRequest)}, []byte(service)}
	frame = append(frame, body...)
	if err := c.peer.Send(frame); err != nil {
		return nil, err
	}

	out := make(chan Reply, 4)
	go c.pump(ctx, out, pollInterval)
	return out, nil
}

func (c *Client) pump(ctx context.Context, out chan<- Reply, pollInterval time.Duration) {
	defer close(out)
	for {
		if ctx.Err() != nil {
			return
		}
		frames, ok, err := c.peer.RecvTimeout(pollInterval)
		if err != nil {
			out <- Reply{Err: err}
			return
		}
		if !ok {
			continue
		}

		reply, ok := parseReply(frames)
		if !ok {
			c.log.Warn().Msg("malformed response header from broker, dropping")
			continue
		}
		out <- reply
		if reply.Final {
			return
		}
	}
}

// parseReply decodes [MDPC02, command, body...] into a Reply. It
// reports ok=false for anything that isn't a well-formed PARTIAL/FINAL
// frame, so the caller can log and keep polling instead of crashing on
// broker noise.
func parseReply(frames [][]byte) (Reply, bool) {
	if len(frames) < 2 || string(frames[0]) != mdp.ClientHeader || len(frames[1]) != 1 {
		return Reply{}, false
	}
	cmd := mdp.ClientCommand(frames[1][0])
	if cmd != mdp.ClientPartial && cmd != mdp.ClientFinal {
		return Reply{}, false
	}
	return Reply{Final: cmd == mdp.ClientFinal, Body: frames[2:]}, true
}
