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

// handleClientFrames processes one multipart message off the client
// endpoint. frames[0] is always the client's router-assigned identity;
// the rest is the MDP/C envelope.
func (b *Broker) handleClientFrames(frames [][]byte) {
	if len(frames) < 1 {
		return
	}
	clientID, err := mdp.ParseIdentity(frames[0])
	if err != nil {
		b.log.Warn().Err(err).Msg("dropping client frame with empty identity")
		return
	}

	req, err := mdp.DecodeClientRequest(frames[1:])
	if err != nil {
		b.log.Warn().Err(err).Str("client", clientID.String()).Msg("malformed client request")
		return
	}

	if isMMIService(req.Service) {
		status, respond := b.handleMMI(req.Service, req.Body)
		if !respond {
			return
		}
		reply := mdp.EncodeClientServiceResponse(mdp.ClientFinal, req.Service, [][]byte{[]byte(status)})
		b.sendToClient(clientID, reply)
		return
	}

	if !b.registry.CanHandle(req.Service) {
		b.stats.UnknownServiceDrop++
		b.log.Debug().Str("service", req.Service).Msg("no worker registered for service")
		if b.config.UnknownService == RespondNotFound {
			reply := mdp.EncodeClientServiceResponse(mdp.ClientFinal, req.Service, [][]byte{[]byte("404")})
			b.sendToClient(clientID, reply)
		}
		return
	}

	workerID, ok := b.registry.Next(req.Service)
	if !ok {
		// CanHandle and Next both read the same index; this can only
		// happen if the service list emptied between the two calls,
		// which never happens on a single-threaded reactor. Kept as a
		// defensive branch since Next's contract allows it.
		return
	}

	envelope := [][]byte{[]byte(clientID)}
	frame := mdp.EncodeWorkerRequest(envelope, req.Body)
	b.sendToWorker(workerID, frame)
	b.stats.RequestsRouted++
}

// handleWorkerFrames processes one multipart message off the worker
// endpoint. frames[0] is the worker's router-assigned identity.
func (b *Broker) handleWorkerFrames(frames [][]byte, now time.Time) {
	if len(frames) < 1 {
		return
	}
	workerID, err := mdp.ParseIdentity(frames[0])
	if err != nil {
		b.log.Warn().Err(err).Msg("dropping worker frame with empty identity")
		return
	}

	msg, err := mdp.DecodeWorkerMessage(frames[1:])
	if err != nil {
		b.log.Warn().Err(err).Str("worker", workerID.String()).Msg("malformed worker message")
		return
	}

	switch msg.Command {
	case mdp.WorkerReady:
		b.registry.Register(workerID, msg.Service, now)
		b.log.Info().Str("worker", workerID.String()).Str("service", msg.Service).Msg("worker registered")

	case mdp.WorkerHeartbeat:
		if !b.registry.Refresh(workerID, now) {
			b.log.Debug().Str("worker", workerID.String()).Msg("heartbeat from unknown worker")
		}

	case mdp.WorkerPartial, mdp.WorkerFinal:
		if !b.registry.Refresh(workerID, now) {
			b.log.Debug().Str("worker", workerID.String()).Msg("reply from unknown worker")
		}
		clientCmd := mdp.ClientPartial
		if msg.Command == mdp.WorkerFinal {
			clientCmd = mdp.ClientFinal
		}
		b.forwardReply(msg.Envelope, clientCmd, msg.Body)
		b.stats.RepliesForwarded++

	case mdp.WorkerDisconnect:
		if b.registry.Remove(workerID) {
			b.log.Info().Str("worker", workerID.String()).Msg("worker disconnected")
		}

	default:
		b.log.Debug().Str("worker", workerID.String()).Msg("ignoring unexpected worker command")
	}
}

// forwardReply rebuilds the client-facing envelope exactly as the
// worker sent it — byte-identical, whether one frame or several — then
// appends the MDP/C header and command byte, per
// original_source/broker/src/handlers.rs's handle_worker_partial_final_answer.
func (b *Broker) forwardReply(envelope [][]byte, cmd mdp.ClientCommand, body [][]byte) {
	if len(envelope) == 0 {
		b.log.Warn().Msg("worker reply carried no client envelope, dropping")
		return
	}
	frame := make([][]byte, 0, len(envelope)+2+len(body))
	frame = append(frame, envelope...)
	frame = append(frame, mdp.EncodeClientResponse(cmd, body)...)
	b.sendFrames(b.clients, frame)
}

func (b *Broker) sendToClient(clientID mdp.Identity, frame [][]byte) {
	full := append([][]byte{[]byte(clientID)}, frame...)
	b.sendFrames(b.clients, full)
}

func (b *Broker) sendToWorker(workerID mdp.Identity, frame [][]byte) {
	full := append([][]byte{[]byte(workerID)}, frame...)
	b.sendFrames(b.workers, full)
}
