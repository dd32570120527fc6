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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigExpiry(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 6250*time.Millisecond, cfg.Expiry())
}

func TestUnknownServiceResponseYAMLRoundTrip(t *testing.T) {
	t.Run("drop", func(t *testing.T) {
		var u UnknownServiceResponse
		require.NoError(t, yaml.Unmarshal([]byte("drop"), &u))
		assert.Equal(t, Drop, u)
	})

	t.Run("respond_not_found", func(t *testing.T) {
		var u UnknownServiceResponse
		require.NoError(t, yaml.Unmarshal([]byte("respond_not_found"), &u))
		assert.Equal(t, RespondNotFound, u)
	})

	t.Run("unrecognized value errors", func(t *testing.T) {
		var u UnknownServiceResponse
		assert.Error(t, yaml.Unmarshal([]byte("bogus"), &u))
	})
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broker.yaml")
	contents := "client_bind_addr: tcp://*:7000\nunknown_service: respond_not_found\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://*:7000", cfg.ClientBindAddr)
	assert.Equal(t, RespondNotFound, cfg.UnknownService)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultConfig().WorkerBindAddr, cfg.WorkerBindAddr)
}
