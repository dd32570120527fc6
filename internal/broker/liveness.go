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
	"time"

	"majordomo/internal/mdp"
)

// livenessTick runs once every reactor iteration, regardless of whether
// that iteration also serviced client or worker data: it sweeps expired
// workers, then sends a HEARTBEAT to everyone still registered whose
// heartbeat is due. Matches original_source's check_expired_workers +
// send_heartbeat, called unconditionally every loop iteration there;
// here each worker tracks its own next-due time so a reactor tick
// shorter than the heartbeat interval doesn't resend redundantly.
func (b *Broker) livenessTick(now time.Time) {
	expired := b.registry.Sweep(now)
	for _, id := range expired {
		b.stats.WorkersExpired++
		delete(b.nextHeartbeatDue, id)
		b.log.Info().Str("worker", id.String()).Msg("worker expired, removed from registry")
	}

	for _, w := range b.registry.All() {
		due, ok := b.nextHeartbeatDue[w.Identity]
		if ok && now.Before(due) {
			continue
		}
		b.sendToWorker(w.Identity, mdp.EncodeWorkerHeartbeat())
		b.nextHeartbeatDue[w.Identity] = now.Add(b.config.HeartbeatInterval)
		b.stats.HeartbeatsSent++
	}
}
