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

package broker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"majordomo/internal/mdp"
	"majordomo/internal/transport"
)

var inprocCounter int

// newTestBroker builds a real Broker bound to unique inproc addresses,
// so each test gets an isolated pair of ROUTER sockets without needing
// a free TCP port.
func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	inprocCounter++
	cfg := DefaultConfig()
	cfg.ClientBindAddr = fmt.Sprintf("inproc://test-clients-%d", inprocCounter)
	cfg.WorkerBindAddr = fmt.Sprintf("inproc://test-workers-%d", inprocCounter)
	cfg.HeartbeatInterval = 50 * time.Millisecond
	cfg.ExpiryMultiplier = 3

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.close)
	return b
}

func TestHandleWorkerReadyRegistersWorker(t *testing.T) {
	b := newTestBroker(t)
	now := time.Now()

	if b.registry.CanHandle("echo") {
		t.Fatal("echo should not be handled before READY")
	}

	readyFrames := [][]byte{[]byte("\x00aaaa"), []byte(mdp.WorkerHeader), {byte(mdp.WorkerReady)}, []byte("echo")}
	b.handleWorkerFrames(readyFrames, now)

	if !b.registry.CanHandle("echo") {
		t.Fatal("expected echo to be handled after READY")
	}
}

func TestHandleWorkerHeartbeatFromUnknownWorkerIsIgnored(t *testing.T) {
	b := newTestBroker(t)
	now := time.Now()

	frames := [][]byte{[]byte("\x00ffff"), []byte(mdp.WorkerHeader), {byte(mdp.WorkerHeartbeat)}}
	b.handleWorkerFrames(frames, now)

	if len(b.registry.All()) != 0 {
		t.Fatal("heartbeat from an unregistered worker must not create a registration")
	}
}

func TestHandleClientRequestUnknownServiceDropsByDefault(t *testing.T) {
	b := newTestBroker(t)

	frames := [][]byte{
		[]byte("\x00client1"),
		[]byte(mdp.ClientHeader),
		{byte(mdp.ClientRequest)},
		[]byte("nosuchservice"),
		[]byte("body"),
	}
	b.handleClientFrames(frames)

	if b.stats.UnknownServiceDrop != 1 {
		t.Fatalf("expected one unknown-service drop, got %d", b.stats.UnknownServiceDrop)
	}
}

func TestHandleClientRequestRoutesToRegisteredWorker(t *testing.T) {
	b := newTestBroker(t)
	now := time.Now()
	b.registry.Register(mdp.Identity("\x00worker1"), "echo", now)

	frames := [][]byte{
		[]byte("\x00client1"),
		[]byte(mdp.ClientHeader),
		{byte(mdp.ClientRequest)},
		[]byte("echo"),
		[]byte("body"),
	}
	b.handleClientFrames(frames)

	if b.stats.RequestsRouted != 1 {
		t.Fatalf("expected one routed request, got %d", b.stats.RequestsRouted)
	}
}

func TestHandleMMIServiceFoundAndNotFound(t *testing.T) {
	b := newTestBroker(t)
	now := time.Now()
	b.registry.Register(mdp.Identity("\x00worker1"), "echo", now)

	if status, ok := b.handleMMI("mmi.service", [][]byte{[]byte("echo")}); status != "200" || !ok {
		t.Fatalf("expected 200/true, got %q/%v", status, ok)
	}
	if status, ok := b.handleMMI("mmi.service", [][]byte{[]byte("missing")}); status != "404" || !ok {
		t.Fatalf("expected 404/true, got %q/%v", status, ok)
	}
	if status, ok := b.handleMMI("mmi.unknown", nil); status != "501" || !ok {
		t.Fatalf("expected 501/true, got %q/%v", status, ok)
	}
	if _, ok := b.handleMMI("mmi.service", nil); ok {
		t.Fatal("mmi.service with no parameter should not respond")
	}
}

func TestLivenessTickExpiresStaleWorker(t *testing.T) {
	b := newTestBroker(t)
	base := time.Now()
	b.registry.Register(mdp.Identity("\x00worker1"), "echo", base)

	b.livenessTick(base.Add(b.config.Expiry() + time.Second))

	if b.stats.WorkersExpired != 1 {
		t.Fatalf("expected the worker to expire, got %d expired", b.stats.WorkersExpired)
	}
	if b.registry.CanHandle("echo") {
		t.Fatal("echo should have no workers after expiry")
	}
}

func TestLivenessTickSkipsHeartbeatBeforeDue(t *testing.T) {
	b := newTestBroker(t)
	base := time.Now()
	b.registry.Register(mdp.Identity("\x00worker1"), "echo", base)

	b.livenessTick(base)
	firstCount := b.stats.HeartbeatsSent
	b.livenessTick(base.Add(time.Millisecond))

	if b.stats.HeartbeatsSent != firstCount {
		t.Fatalf("expected no additional heartbeat before it's due, got %d -> %d", firstCount, b.stats.HeartbeatsSent)
	}
}

// TestRunSendsHeartbeatsUnderSustainedWorkerTraffic drives Run itself
// (not livenessTick directly) with a worker that never stops sending,
// so every reactor iteration has worker data to service. The liveness
// tick must still fire every iteration regardless, or a worker that
// chats constantly would never receive its own heartbeats and the
// registry would never sweep an unrelated expired peer.
func TestRunSendsHeartbeatsUnderSustainedWorkerTraffic(t *testing.T) {
	b := newTestBroker(t)

	peer, err := transport.NewDealer(b.zctx, b.config.WorkerBindAddr, "")
	if err != nil {
		t.Fatalf("NewDealer: %v", err)
	}
	defer peer.Close()

	send := func(frames [][]byte) {
		if err := peer.Send(frames); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	send([][]byte{[]byte(mdp.WorkerHeader), {byte(mdp.WorkerReady)}, []byte("echo")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		send([][]byte{[]byte(mdp.WorkerHeader), {byte(mdp.WorkerHeartbeat)}})
		time.Sleep(2 * time.Millisecond)
	}

	// Run terminates the broker's zmq context on return, which blocks
	// until every socket of that context, this peer included, is closed.
	peer.Close()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := b.GetStats().HeartbeatsSent; got == 0 {
		t.Fatal("expected the broker's own heartbeats to keep going out despite sustained worker traffic")
	}
}
