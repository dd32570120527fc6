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

package registry

import (
	"testing"
	"time"

	"majordomo/internal/mdp"
)

func TestRegisterAndCanHandle(t *testing.T) {
	r := New(time.Second)
	now := time.Now()

	if r.CanHandle("echo") {
		t.Fatal("CanHandle should be false before any registration")
	}
	r.Register(mdp.Identity("\x00aaaa"), "echo", now)
	if !r.CanHandle("echo") {
		t.Fatal("CanHandle should be true after registration")
	}
}

func TestDuplicateReadyIsIdempotentRefresh(t *testing.T) {
	r := New(time.Second)
	now := time.Now()
	id := mdp.Identity("\x00aaaa")

	r.Register(id, "echo", now)
	r.Register(id, "echo", now.Add(500*time.Millisecond))

	if len(r.All()) != 1 {
		t.Fatalf("expected exactly one worker after duplicate READY, got %d", len(r.All()))
	}
	if got, want := r.byIdentity[id], 0; got != want {
		t.Fatalf("expected the same arena slot reused, got %d", got)
	}
}

func TestRoundRobinRotation(t *testing.T) {
	r := New(time.Minute)
	now := time.Now()
	a, b, c := mdp.Identity("a"), mdp.Identity("b"), mdp.Identity("c")
	r.Register(a, "echo", now)
	r.Register(b, "echo", now)
	r.Register(c, "echo", now)

	var order []mdp.Identity
	for i := 0; i < 6; i++ {
		id, ok := r.Next("echo")
		if !ok {
			t.Fatal("expected a worker")
		}
		order = append(order, id)
	}

	want := []mdp.Identity{a, b, c, a, b, c}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("rotation mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

func TestRoundRobinSingleWorkerNeverRotatesAway(t *testing.T) {
	r := New(time.Minute)
	now := time.Now()
	solo := mdp.Identity("solo")
	r.Register(solo, "echo", now)

	for i := 0; i < 3; i++ {
		id, ok := r.Next("echo")
		if !ok || id != solo {
			t.Fatalf("expected solo worker every time, got %v ok=%v", id, ok)
		}
	}
}

func TestSweepExpiresOldestFirstAndStops(t *testing.T) {
	r := New(time.Second)
	base := time.Now()

	old := mdp.Identity("old")
	mid := mdp.Identity("mid")
	fresh := mdp.Identity("fresh")

	r.Register(old, "echo", base)
	r.Refresh(old, base)
	r.Register(mid, "echo", base.Add(2*time.Second))
	r.Register(fresh, "echo", base.Add(4*time.Second))

	removed := r.Sweep(base.Add(3500 * time.Millisecond))
	if len(removed) != 2 {
		t.Fatalf("expected 2 expirations, got %d: %v", len(removed), removed)
	}
	if removed[0] != old || removed[1] != mid {
		t.Fatalf("expected oldest-first order, got %v", removed)
	}
	if r.CanHandle("echo") == false {
		t.Fatal("fresh worker should still be registered")
	}
	remaining := r.All()
	if len(remaining) != 1 || remaining[0].Identity != fresh {
		t.Fatalf("expected only fresh to remain, got %v", remaining)
	}
}

func TestRemoveUnknownWorkerReportsFalse(t *testing.T) {
	r := New(time.Second)
	if r.Remove(mdp.Identity("ghost")) {
		t.Fatal("removing an unregistered identity should report false")
	}
	if r.Refresh(mdp.Identity("ghost"), time.Now()) {
		t.Fatal("refreshing an unregistered identity should report false")
	}
}

func TestRemoveClearsServiceIndex(t *testing.T) {
	r := New(time.Second)
	now := time.Now()
	a, b := mdp.Identity("a"), mdp.Identity("b")
	r.Register(a, "echo", now)
	r.Register(b, "echo", now)

	if !r.Remove(a) {
		t.Fatal("expected removal to succeed")
	}
	id, ok := r.Next("echo")
	if !ok || id != b {
		t.Fatalf("expected only b to remain in rotation, got %v ok=%v", id, ok)
	}

	r.Remove(b)
	if r.CanHandle("echo") {
		t.Fatal("service entry should be cleared once all workers are gone")
	}
}

func TestArenaSlotReuseAfterRemoval(t *testing.T) {
	r := New(time.Second)
	now := time.Now()
	a := mdp.Identity("a")
	r.Register(a, "echo", now)
	r.Remove(a)

	b := mdp.Identity("b")
	r.Register(b, "search", now)
	if len(r.entries) != 1 {
		t.Fatalf("expected the freed slot to be reused, arena grew to %d", len(r.entries))
	}
}
