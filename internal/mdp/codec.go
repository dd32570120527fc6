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

package mdp

// All Decode* functions take the frames of a logical message *after* the
// router-supplied identity frame has been stripped by the transport
// layer. All Encode* functions return frames to prepend the destination
// identity to before sending — the codec never touches the socket.

// ClientMessage is a parsed client REQUEST.
type ClientMessage struct {
	Service string
	Body    [][]byte
}

// DecodeClientRequest parses [header, command, service, body...].
func DecodeClientRequest(frames [][]byte) (*ClientMessage, error) {
	if len(frames) < 3 {
		return nil, errMalformed("client request needs at least 3 frames")
	}
	if string(frames[0]) != ClientHeader {
		return nil, errProtocolMismatch(string(frames[0]))
	}
	if len(frames[1]) != 1 {
		return nil, errMalformed("command frame must be one byte")
	}
	cmd := ClientCommand(frames[1][0])
	if cmd != ClientRequest {
		return nil, errUnknownCommand(frames[1][0])
	}
	service := string(frames[2])
	if service == "" {
		return nil, errMalformed("empty service name")
	}
	return &ClientMessage{Service: service, Body: frames[3:]}, nil
}

// EncodeClientResponse builds [header, command, body...] for a plain
// PARTIAL/FINAL reply (no service-name frame).
func EncodeClientResponse(cmd ClientCommand, body [][]byte) [][]byte {
	out := make([][]byte, 0, 2+len(body))
	out = append(out, []byte(ClientHeader), []byte{byte(cmd)})
	return append(out, body...)
}

// EncodeClientServiceResponse builds [header, command, service, body...],
// the shape MMI replies use.
func EncodeClientServiceResponse(cmd ClientCommand, service string, body [][]byte) [][]byte {
	out := make([][]byte, 0, 3+len(body))
	out = append(out, []byte(ClientHeader), []byte{byte(cmd)}, []byte(service))
	return append(out, body...)
}

// WorkerMessage is a parsed inbound worker frame.
type WorkerMessage struct {
	Command WorkerCommand
	// Service is set only for READY.
	Service string
	// Envelope and Body are set only for REQUEST/PARTIAL/FINAL: Envelope
	// is every client-identity frame up to (not including) the empty
	// delimiter, and Body is everything after it.
	Envelope [][]byte
	Body     [][]byte
}

// DecodeWorkerMessage parses [header, command, ...].
func DecodeWorkerMessage(frames [][]byte) (*WorkerMessage, error) {
	if len(frames) < 2 {
		return nil, errMalformed("worker message needs at least 2 frames")
	}
	if string(frames[0]) != WorkerHeader {
		return nil, errProtocolMismatch(string(frames[0]))
	}
	if len(frames[1]) != 1 {
		return nil, errMalformed("command frame must be one byte")
	}
	cmd := WorkerCommand(frames[1][0])
	rest := frames[2:]

	switch cmd {
	case WorkerReady:
		if len(rest) < 1 {
			return nil, errMalformed("READY requires a service name frame")
		}
		return &WorkerMessage{Command: cmd, Service: string(rest[0])}, nil

	case WorkerHeartbeat, WorkerDisconnect:
		return &WorkerMessage{Command: cmd}, nil

	case WorkerPartial, WorkerFinal:
		envelope, body, err := splitEnvelope(rest)
		if err != nil {
			return nil, err
		}
		return &WorkerMessage{Command: cmd, Envelope: envelope, Body: body}, nil

	case WorkerRequest:
		// A worker decodes the broker's REQUEST and needs its envelope
		// and body. The broker itself never expects REQUEST from a
		// worker and ignores it, so a REQUEST without a delimiter is
		// still accepted (with no envelope) rather than rejected.
		msg := &WorkerMessage{Command: cmd}
		if envelope, body, err := splitEnvelope(rest); err == nil {
			msg.Envelope, msg.Body = envelope, body
		}
		return msg, nil

	default:
		return nil, errUnknownCommand(frames[1][0])
	}
}

// splitEnvelope consumes frames up to and including the first empty
// delimiter, returning the frames before it (the envelope) and the
// frames after it (the body). A client identity, as carried through a
// worker's reply, may in principle be multi-frame (general router-to-
// router chains) — this treats it as "all frames up to the first empty
// delimiter" rather than assuming exactly one identity frame.
func splitEnvelope(frames [][]byte) (envelope [][]byte, body [][]byte, err error) {
	for i, f := range frames {
		if len(f) == 0 {
			return frames[:i], frames[i+1:], nil
		}
	}
	return nil, nil, errMalformed("worker reply missing empty delimiter")
}

// EncodeWorkerRequest builds [header, REQUEST, envelope..., empty, body...]
// for the broker to send to a worker.
func EncodeWorkerRequest(envelope [][]byte, body [][]byte) [][]byte {
	out := make([][]byte, 0, 3+len(envelope)+len(body))
	out = append(out, []byte(WorkerHeader), []byte{byte(WorkerRequest)})
	out = append(out, envelope...)
	out = append(out, []byte{})
	return append(out, body...)
}

// EncodeWorkerHeartbeat builds [header, HEARTBEAT].
func EncodeWorkerHeartbeat() [][]byte {
	return [][]byte{[]byte(WorkerHeader), {byte(WorkerHeartbeat)}}
}
