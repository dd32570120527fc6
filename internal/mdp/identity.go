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

package mdp

import "encoding/binary"

// Identity is an opaque router-assigned peer identity. Workers are
// expected to use the canonical 5-byte form (0x00 followed by four
// random bytes); the broker treats the whole byte string as an opaque
// map key regardless of length. Equality is always byte-wise — the
// 32-bit canonical decoding below is a display convenience only and
// never participates in registry lookups.
type Identity string

// ParseIdentity validates and wraps a raw identity frame. It never
// panics: callers get a typed error instead.
func ParseIdentity(raw []byte) (Identity, error) {
	if len(raw) == 0 {
		return "", errMalformed("empty identity frame")
	}
	return Identity(raw), nil
}

// Canonical decodes the trailing four bytes of a 5-byte worker identity
// (0x00 || 4 random bytes) as a native-endian uint32, as a display
// form. Identities that aren't exactly 5 bytes report ok=false. The
// broker's log lines and admin surface print String(), not this.
func (id Identity) Canonical() (value uint32, ok bool) {
	if len(id) != 5 {
		return 0, false
	}
	return binary.NativeEndian.Uint32([]byte(id)[1:]), true
}

func (id Identity) String() string { return string(id) }
