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

// Package registry tracks live workers for the broker's reactor. It is
// plain data plus methods: no goroutines, no locks, no channels. The
// reactor is the only caller and it never calls concurrently, so the
// package doesn't need to defend against that.
//
// Workers live in a generational arena (a slice plus a free list) so
// that removal never reshuffles other workers' positions. Two
// independent orderings sit on top of the arena, both index-only:
//
//   - an intrusive doubly-linked list in least-recently-refreshed order,
//     used by Sweep to find expired workers without a full scan;
//   - a per-service slice of indices, used by Next for strict FIFO
//     round robin dispatch.
//
// rustydomo's MajordomoContext (majordomo_context.rs) keeps the same
// two orderings with Rc<RefCell<ServiceInfo>> shared ownership; the
// arena-plus-indices shape here gets the same behavior without shared
// mutable state, which Go doesn't need and doesn't make pleasant.
package registry

import (
	"time"

	"majordomo/internal/mdp"
)

const noIndex = -1

type entry struct {
	identity   mdp.Identity
	service    string
	expiresAt  time.Time
	generation uint32
	live       bool

	lruPrev, lruNext int
}

// Registry is the broker's worker table.
type Registry struct {
	entries  []entry
	freeList []int

	lruHead, lruTail int

	byIdentity map[mdp.Identity]int
	byService  map[string][]int

	expiry time.Duration
}

// New creates an empty registry. expiry is the grace period a worker's
// last READY/HEARTBEAT/reply buys it before Sweep considers it dead.
func New(expiry time.Duration) *Registry {
	return &Registry{
		lruHead:    noIndex,
		lruTail:    noIndex,
		byIdentity: make(map[mdp.Identity]int),
		byService:  make(map[string][]int),
		expiry:     expiry,
	}
}

// WorkerInfo is a read-only snapshot of one registered worker, for the
// admin HTTP surface and the top dashboard.
type WorkerInfo struct {
	Identity  mdp.Identity
	Service   string
	ExpiresAt time.Time
}

// Register adds a new worker, or — if the identity is already known —
// idempotently refreshes it in place. A worker that sends a second
// READY (e.g. after a reconnect that reused its identity) is treated
// as a liveness refresh rather than a duplicate registration error;
// this matches no normative MDP/W requirement against it and avoids
// punishing a worker for being eager.
func (r *Registry) Register(identity mdp.Identity, service string, now time.Time) {
	if idx, ok := r.byIdentity[identity]; ok {
		e := &r.entries[idx]
		if e.service != service {
			r.removeFromService(idx, e.service)
			e.service = service
			r.byService[service] = append(r.byService[service], idx)
		}
		r.refreshAt(idx, now)
		return
	}

	idx := r.alloc()
	e := &r.entries[idx]
	e.identity = identity
	e.service = service
	e.expiresAt = now.Add(r.expiry)
	e.live = true
	r.byIdentity[identity] = idx
	r.byService[service] = append(r.byService[service], idx)
	r.pushFront(idx)
}

// Refresh extends a known worker's expiration and moves it to the
// front of the LRU list. It reports false if the identity isn't
// registered (the caller should treat that as an unknown-worker
// heartbeat/reply — log and ignore, per spec error taxonomy).
func (r *Registry) Refresh(identity mdp.Identity, now time.Time) bool {
	idx, ok := r.byIdentity[identity]
	if !ok {
		return false
	}
	r.refreshAt(idx, now)
	return true
}

func (r *Registry) refreshAt(idx int, now time.Time) {
	r.entries[idx].expiresAt = now.Add(r.expiry)
	r.unlink(idx)
	r.pushFront(idx)
}

// Remove drops a worker immediately (DISCONNECT; Sweep evicts through
// the same internal free path).
// It reports false if the identity wasn't registered.
func (r *Registry) Remove(identity mdp.Identity) bool {
	idx, ok := r.byIdentity[identity]
	if !ok {
		return false
	}
	r.free(idx)
	return true
}

// CanHandle reports whether any live worker is registered for service.
func (r *Registry) CanHandle(service string) bool {
	return len(r.byService[service]) > 0
}

// Next returns the next worker that should handle a request for
// service, round-robin, and reports false if none are registered. Each
// call rotates the service's list left by one so the next call picks a
// different worker, matching rustydomo's process_tasks: take the
// front, rotate left if more than one remains.
func (r *Registry) Next(service string) (mdp.Identity, bool) {
	indices := r.byService[service]
	if len(indices) == 0 {
		return "", false
	}
	idx := indices[0]
	if len(indices) > 1 {
		rotated := make([]int, len(indices))
		copy(rotated, indices[1:])
		rotated[len(rotated)-1] = idx
		r.byService[service] = rotated
	}
	return r.entries[idx].identity, true
}

// Sweep removes every worker whose expiration has passed, scanning
// from the least-recently-refreshed end of the LRU list and stopping
// at the first entry that hasn't expired yet (the list is kept in
// refresh order, so everything after that point is also still live).
// It returns the identities removed, for the caller to log.
func (r *Registry) Sweep(now time.Time) []mdp.Identity {
	var removed []mdp.Identity
	for {
		idx := r.lruTail
		if idx == noIndex {
			break
		}
		if !r.entries[idx].expiresAt.Before(now) {
			break
		}
		removed = append(removed, r.entries[idx].identity)
		r.free(idx)
	}
	return removed
}

// All returns a snapshot of every live worker, most-recently-refreshed
// first.
func (r *Registry) All() []WorkerInfo {
	out := make([]WorkerInfo, 0, len(r.byIdentity))
	for idx := r.lruHead; idx != noIndex; idx = r.entries[idx].lruNext {
		e := r.entries[idx]
		out = append(out, WorkerInfo{Identity: e.identity, Service: e.service, ExpiresAt: e.expiresAt})
	}
	return out
}

// Services returns the distinct service names with at least one
// registered worker, for the broker's stats and admin surface.
func (r *Registry) Services() []string {
	out := make([]string, 0, len(r.byService))
	for name, indices := range r.byService {
		if len(indices) > 0 {
			out = append(out, name)
		}
	}
	return out
}

func (r *Registry) alloc() int {
	if n := len(r.freeList); n > 0 {
		idx := r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
		r.entries[idx].generation++
		return idx
	}
	r.entries = append(r.entries, entry{lruPrev: noIndex, lruNext: noIndex})
	return len(r.entries) - 1
}

func (r *Registry) free(idx int) {
	e := &r.entries[idx]
	if !e.live {
		return
	}
	r.unlink(idx)
	r.removeFromService(idx, e.service)
	delete(r.byIdentity, e.identity)
	*e = entry{generation: e.generation, lruPrev: noIndex, lruNext: noIndex}
	r.freeList = append(r.freeList, idx)
}

func (r *Registry) removeFromService(idx int, service string) {
	indices := r.byService[service]
	for i, v := range indices {
		if v == idx {
			indices = append(indices[:i], indices[i+1:]...)
			break
		}
	}
	if len(indices) == 0 {
		delete(r.byService, service)
	} else {
		r.byService[service] = indices
	}
}

func (r *Registry) pushFront(idx int) {
	e := &r.entries[idx]
	e.lruPrev = noIndex
	e.lruNext = r.lruHead
	if r.lruHead != noIndex {
		r.entries[r.lruHead].lruPrev = idx
	}
	r.lruHead = idx
	if r.lruTail == noIndex {
		r.lruTail = idx
	}
}

func (r *Registry) unlink(idx int) {
	e := &r.entries[idx]
	if e.lruPrev != noIndex {
		r.entries[e.lruPrev].lruNext = e.lruNext
	} else {
		r.lruHead = e.lruNext
	}
	if e.lruNext != noIndex {
		r.entries[e.lruNext].lruPrev = e.lruPrev
	} else {
		r.lruTail = e.lruPrev
	}
	e.lruPrev, e.lruNext = noIndex, noIndex
}
