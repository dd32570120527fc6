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

import (
	"bytes"
	"testing"
)

func TestDecodeClientRequest(t *testing.T) {
	t.Run("valid request with body", func(t *testing.T) {
		frames := [][]byte{
			[]byte(ClientHeader),
			{byte(ClientRequest)},
			[]byte("echo"),
			[]byte("hello"),
		}
		req, err := DecodeClientRequest(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Service != "echo" {
			t.Errorf("service = %q, want echo", req.Service)
		}
		if len(req.Body) != 1 || !bytes.Equal(req.Body[0], []byte("hello")) {
			t.Errorf("body = %v, want [hello]", req.Body)
		}
	})

	t.Run("valid request with no body frames", func(t *testing.T) {
		frames := [][]byte{
			[]byte(ClientHeader),
			{byte(ClientRequest)},
			[]byte("echo"),
		}
		req, err := DecodeClientRequest(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(req.Body) != 0 {
			t.Errorf("body = %v, want empty", req.Body)
		}
	})

	t.Run("bad header", func(t *testing.T) {
		frames := [][]byte{[]byte("MDPC01"), {byte(ClientRequest)}, []byte("echo")}
		if _, err := DecodeClientRequest(frames); !IsProtocolError(err, "ProtocolMismatch") {
			t.Fatalf("expected ProtocolMismatch, got %v", err)
		}
	})

	t.Run("wrong command byte", func(t *testing.T) {
		frames := [][]byte{[]byte(ClientHeader), {byte(ClientPartial)}, []byte("echo")}
		if _, err := DecodeClientRequest(frames); !IsProtocolError(err, "UnknownCommand") {
			t.Fatalf("expected UnknownCommand, got %v", err)
		}
	})

	t.Run("empty service name", func(t *testing.T) {
		frames := [][]byte{[]byte(ClientHeader), {byte(ClientRequest)}, []byte("")}
		if _, err := DecodeClientRequest(frames); !IsProtocolError(err, "MalformedFrame") {
			t.Fatalf("expected MalformedFrame, got %v", err)
		}
	})

	t.Run("too few frames", func(t *testing.T) {
		frames := [][]byte{[]byte(ClientHeader), {byte(ClientRequest)}}
		if _, err := DecodeClientRequest(frames); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestEncodeClientResponses(t *testing.T) {
	t.Run("plain response", func(t *testing.T) {
		out := EncodeClientResponse(ClientFinal, [][]byte{[]byte("ok")})
		want := [][]byte{[]byte(ClientHeader), {byte(ClientFinal)}, []byte("ok")}
		assertFrames(t, out, want)
	})

	t.Run("service-tagged response", func(t *testing.T) {
		out := EncodeClientServiceResponse(ClientFinal, "mmi.service", [][]byte{[]byte("200")})
		want := [][]byte{[]byte(ClientHeader), {byte(ClientFinal)}, []byte("mmi.service"), []byte("200")}
		assertFrames(t, out, want)
	})
}

func TestDecodeWorkerMessage(t *testing.T) {
	t.Run("READY", func(t *testing.T) {
		frames := [][]byte{[]byte(WorkerHeader), {byte(WorkerReady)}, []byte("echo")}
		msg, err := DecodeWorkerMessage(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Command != WorkerReady || msg.Service != "echo" {
			t.Errorf("got %+v", msg)
		}
	})

	t.Run("HEARTBEAT", func(t *testing.T) {
		frames := [][]byte{[]byte(WorkerHeader), {byte(WorkerHeartbeat)}}
		msg, err := DecodeWorkerMessage(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Command != WorkerHeartbeat {
			t.Errorf("command = %v, want HEARTBEAT", msg.Command)
		}
	})

	t.Run("FINAL with single-frame envelope and body", func(t *testing.T) {
		frames := [][]byte{
			[]byte(WorkerHeader),
			{byte(WorkerFinal)},
			[]byte("client-identity"),
			[]byte(""),
			[]byte("reply body"),
		}
		msg, err := DecodeWorkerMessage(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msg.Envelope) != 1 || string(msg.Envelope[0]) != "client-identity" {
			t.Errorf("envelope = %v", msg.Envelope)
		}
		if len(msg.Body) != 1 || string(msg.Body[0]) != "reply body" {
			t.Errorf("body = %v", msg.Body)
		}
	})

	t.Run("PARTIAL with multi-frame envelope", func(t *testing.T) {
		frames := [][]byte{
			[]byte(WorkerHeader),
			{byte(WorkerPartial)},
			[]byte("hop-1"),
			[]byte("hop-2"),
			[]byte(""),
			[]byte("chunk"),
		}
		msg, err := DecodeWorkerMessage(frames)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msg.Envelope) != 2 {
			t.Errorf("envelope = %v, want 2 frames", msg.Envelope)
		}
	})

	t.Run("FINAL missing delimiter", func(t *testing.T) {
		frames := [][]byte{[]byte(WorkerHeader), {byte(WorkerFinal)}, []byte("client-identity")}
		if _, err := DecodeWorkerMessage(frames); !IsProtocolError(err, "MalformedFrame") {
			t.Fatalf("expected MalformedFrame, got %v", err)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		frames := [][]byte{[]byte(WorkerHeader), {0x7f}}
		if _, err := DecodeWorkerMessage(frames); !IsProtocolError(err, "UnknownCommand") {
			t.Fatalf("expected UnknownCommand, got %v", err)
		}
	})
}

func TestEncodeWorkerFrames(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		out := EncodeWorkerRequest([][]byte{[]byte("client-identity")}, [][]byte{[]byte("payload")})
		want := [][]byte{
			[]byte(WorkerHeader),
			{byte(WorkerRequest)},
			[]byte("client-identity"),
			[]byte(""),
			[]byte("payload"),
		}
		assertFrames(t, out, want)
	})

	t.Run("heartbeat", func(t *testing.T) {
		out := EncodeWorkerHeartbeat()
		want := [][]byte{[]byte(WorkerHeader), {byte(WorkerHeartbeat)}}
		assertFrames(t, out, want)
	})
}

func assertFrames(t *testing.T, got, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("frame count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range got {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("frame %d = %q, want %q", i, got[i], want[i])
		}
	}
}
