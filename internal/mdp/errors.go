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

import "fmt"

// ProtocolError is the codec's error kind. It never panics on malformed
// input; every parsing fault surfaces as one of these, handled by the
// dispatcher (spec error taxonomy: Protocol).
type ProtocolError struct {
	Kind string
	msg  string
}

func (e *ProtocolError) Error() string { return e.msg }

func errProtocolMismatch(got string) error {
	return &ProtocolError{Kind: "ProtocolMismatch", msg: fmt.Sprintf("protocol mismatch: got %q", got)}
}

func errUnknownCommand(b byte) error {
	return &ProtocolError{Kind: "UnknownCommand", msg: fmt.Sprintf("unknown command byte 0x%02x", b)}
}

func errMalformed(why string) error {
	return &ProtocolError{Kind: "MalformedFrame", msg: "malformed frame: " + why}
}

// IsProtocolError reports whether err is a *ProtocolError of the given kind
// ("" matches any kind).
func IsProtocolError(err error, kind string) bool {
	pe, ok := err.(*ProtocolError)
	if !ok {
		return false
	}
	return kind == "" || pe.Kind == kind
}
