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

package transport

import "fmt"

// SetupError wraps a socket-creation, bind, or monitor-attach failure —
// these are always fatal at startup (spec error taxonomy: TransportSetup).
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string { return fmt.Sprintf("transport setup: %s: %v", e.Op, e.Err) }
func (e *SetupError) Unwrap() error { return e.Err }

func errSetup(op string, err error) error {
	return &SetupError{Op: op, Err: err}
}

// IOError wraps a send, recv, or poll failure on an already-established
// socket (spec error taxonomy: Send/Recv). The broker logs a send or
// recv failure and drops that one message; a poll failure ends the
// reactor's Run.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("transport io: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

func errIO(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
