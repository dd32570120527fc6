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

import "majordomo/internal/registry"

// Stats is a point-in-time snapshot of reactor counters, returned by
// GetStats and served at GET /stats on the admin surface.
type Stats struct {
	WorkersRegistered  int    `json:"workers_registered"`
	ServicesAvailable  int    `json:"services_available"`
	RequestsRouted     uint64 `json:"requests_routed"`
	RepliesForwarded   uint64 `json:"replies_forwarded"`
	UnknownServiceDrop uint64 `json:"unknown_service_drops"`
	WorkersExpired     uint64 `json:"workers_expired"`
	HeartbeatsSent     uint64 `json:"heartbeats_sent"`
}

// GetStats snapshots the reactor's counters, RLock-guarded the same
// way the teacher's GetStats/GetServices/GetWorkers are, so the admin
// HTTP goroutine never races the reactor's writes.
func (b *Broker) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.stats
	s.WorkersRegistered = len(b.registry.All())
	s.ServicesAvailable = len(b.registry.Services())
	return s
}

// Services returns a snapshot of registered service names.
func (b *Broker) Services() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.registry.Services()
}

// Workers returns a snapshot of every registered worker.
func (b *Broker) Workers() []registry.WorkerInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.registry.All()
}
