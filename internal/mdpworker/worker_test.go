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

package mdpworker

import (
	"bytes"
	"testing"

	"majordomo/internal/mdp"
)

func TestNewWorkerStartsDisconnected(t *testing.T) {
	w := New("tcp://localhost:6000", "echo", func(b []byte) ([]byte, error) { return b, nil })
	stats := w.GetStats()
	if stats.State != "disconnected" {
		t.Fatalf("state = %q, want disconnected", stats.State)
	}
}

func TestHandleHeartbeatIsNoopAndNeverInvokesHandler(t *testing.T) {
	called := false
	w := New("inproc://unused", "echo", func(b []byte) ([]byte, error) {
		called = true
		return bytes.ToUpper(b), nil
	})

	msg := &mdp.WorkerMessage{
		Command:  mdp.WorkerHeartbeat,
		Envelope: nil,
	}
	if err := w.handle(msg); err != nil {
		t.Fatalf("heartbeat should be a no-op, got %v", err)
	}
	if called {
		t.Fatal("heartbeat must not invoke the handler")
	}
}

func TestHandleDisconnectReturnsSentinelError(t *testing.T) {
	w := New("inproc://unused", "echo", func(b []byte) ([]byte, error) { return b, nil })
	msg := &mdp.WorkerMessage{Command: mdp.WorkerDisconnect}
	if err := w.handle(msg); err != errDisconnectedByBroker {
		t.Fatalf("expected errDisconnectedByBroker, got %v", err)
	}
}
