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
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"majordomo/internal/logger"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// adminServer is a read-only JSON surface over the broker's state, not
// present in spec.md or original_source: it exists so the top dashboard
// and operators have something to poll without speaking MDP/C
// themselves. It never writes to the registry — every handler calls
// straight through to a Broker snapshot method, which takes Broker.mu's
// read lock so the HTTP goroutine never races the reactor's writes.
type adminServer struct {
	addr   string
	broker *Broker
	log    zerolog.Logger
	srv    *http.Server
}

func newAdminServer(addr string, b *Broker) *adminServer {
	return &adminServer{addr: addr, broker: b, log: logger.Component("admin-http")}
}

func (a *adminServer) start() error {
	r := mux.NewRouter()
	r.HandleFunc("/services", a.handleServices).Methods(http.MethodGet)
	r.HandleFunc("/workers", a.handleWorkers).Methods(http.MethodGet)
	r.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	a.srv = &http.Server{
		Addr:              a.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", strings.TrimPrefix(a.addr, "http://"))
	if err != nil {
		return err
	}

	go func() {
		if err := a.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.log.Error().Err(err).Msg("admin http server stopped unexpectedly")
		}
	}()
	a.log.Info().Str("addr", a.addr).Msg("admin http surface listening")
	return nil
}

func (a *adminServer) stop(ctx context.Context) {
	if a.srv == nil {
		return
	}
	_ = a.srv.Shutdown(ctx)
}

func (a *adminServer) handleServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.broker.Services())
}

func (a *adminServer) handleWorkers(w http.ResponseWriter, r *http.Request) {
	type workerView struct {
		Identity  string    `json:"identity"`
		Service   string    `json:"service"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	infos := a.broker.Workers()
	views := make([]workerView, 0, len(infos))
	for _, info := range infos {
		views = append(views, workerView{
			Identity:  info.Identity.String(),
			Service:   info.Service,
			ExpiresAt: info.ExpiresAt,
		})
	}
	writeJSON(w, views)
}

func (a *adminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.broker.GetStats())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
