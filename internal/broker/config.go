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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UnknownServiceResponse selects what the dispatcher does with a client
// REQUEST naming a service nobody has registered for.
type UnknownServiceResponse int

const (
	// Drop logs the request and sends nothing back, matching
	// original_source's behavior (a client retry loop is expected to
	// eventually time out on its own).
	Drop UnknownServiceResponse = iota
	// RespondNotFound answers with an MMI-style synthetic 404 FINAL,
	// so a client library doesn't need a separate timeout path just to
	// learn a service name was wrong.
	RespondNotFound
)

func (u UnknownServiceResponse) String() string {
	if u == RespondNotFound {
		return "respond_not_found"
	}
	return "drop"
}

func (u UnknownServiceResponse) MarshalYAML() (interface{}, error) {
	return u.String(), nil
}

func (u *UnknownServiceResponse) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "", "drop":
		*u = Drop
	case "respond_not_found":
		*u = RespondNotFound
	default:
		return fmt.Errorf("unknown_service: unrecognized value %q", s)
	}
	return nil
}

// Config is the broker's full set of tunables, loadable from YAML.
type Config struct {
	ClientBindAddr string `yaml:"client_bind_addr"`
	WorkerBindAddr string `yaml:"worker_bind_addr"`

	// AdminBindAddr, when non-empty, starts the read-only HTTP admin
	// surface (http.go). Disabled by default.
	AdminBindAddr string `yaml:"admin_bind_addr"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	// ExpiryMultiplier times HeartbeatInterval is how long a worker can
	// go silent before the liveness sweep evicts it.
	ExpiryMultiplier float64      `yaml:"expiry_multiplier"`
	PollTimeout      time.Duration `yaml:"poll_timeout"`

	UnknownService UnknownServiceResponse `yaml:"unknown_service"`
}

// DefaultConfig matches the endpoints and liveness parameters spec.md
// documents as the defaults from source: client router bind
// tcp://*:5000, worker router bind tcp://*:6000, 2.5s heartbeat
// interval, 2.5x expiry multiplier (MDP/W reference values).
func DefaultConfig() Config {
	return Config{
		ClientBindAddr:    "tcp://*:5000",
		WorkerBindAddr:    "tcp://*:6000",
		HeartbeatInterval: 2500 * time.Millisecond,
		ExpiryMultiplier:  2.5,
		PollTimeout:       1 * time.Second,
		UnknownService:    Drop,
	}
}

// Expiry is the duration a worker's registration stays valid without a
// READY, HEARTBEAT, or reply refreshing it.
func (c Config) Expiry() time.Duration {
	return time.Duration(float64(c.HeartbeatInterval) * c.ExpiryMultiplier)
}

// LoadConfig reads a YAML config file, starting from DefaultConfig so a
// partial file only overrides what it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back out as YAML, for `majordomo broker --init`.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
