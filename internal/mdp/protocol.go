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

// Package mdp implements the wire format of the Majordomo Protocol v0.2:
// the client variant (MDP/C v2, header "MDPC02") and the worker variant
// (MDP/W v2, header "MDPW02"). It only encodes and decodes frames; it
// never touches sockets or broker state.
package mdp

// Protocol headers, six ASCII bytes each.
const (
	ClientHeader = "MDPC02"
	WorkerHeader = "MDPW02"
)

// ClientCommand is the command byte of a client-facing frame.
type ClientCommand byte

const (
	ClientRequest ClientCommand = 0x01
	ClientPartial ClientCommand = 0x02
	ClientFinal   ClientCommand = 0x03
)

// WorkerCommand is the command byte of a worker-facing frame.
type WorkerCommand byte

const (
	WorkerReady      WorkerCommand = 0x01
	WorkerRequest    WorkerCommand = 0x02
	WorkerPartial    WorkerCommand = 0x03
	WorkerFinal      WorkerCommand = 0x04
	WorkerHeartbeat  WorkerCommand = 0x05
	WorkerDisconnect WorkerCommand = 0x06
)

func (c ClientCommand) String() string {
	switch c {
	case ClientRequest:
		return "REQUEST"
	case ClientPartial:
		return "PARTIAL"
	case ClientFinal:
		return "FINAL"
	default:
		return "UNKNOWN"
	}
}

func (c WorkerCommand) String() string {
	switch c {
	case WorkerReady:
		return "READY"
	case WorkerRequest:
		return "REQUEST"
	case WorkerPartial:
		return "PARTIAL"
	case WorkerFinal:
		return "FINAL"
	case WorkerHeartbeat:
		return "HEARTBEAT"
	case WorkerDisconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}
