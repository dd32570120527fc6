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

package mdpworker

import "errors"

// errDisconnectedByBroker ends the current session cleanly when the
// broker sends DISCONNECT, so connectAndServe's caller reconnects
// through the normal backoff path instead of treating it as a
// transport fault.
var errDisconnectedByBroker = errors.New("broker sent disconnect")
