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

import "strings"

// isMMIService reports whether service is one of the broker's own
// management-interface pseudo-services, per original_source's
// mmi_handler.rs.
func isMMIService(service string) bool {
	return strings.HasPrefix(service, "mmi.")
}

// handleMMI answers an mmi.* request synchronously. It reports the
// status text to send and whether to send anything at all: a
// malformed mmi.service call (no target-service parameter) is dropped
// silently, matching original_source's handle_mmi_service_request.
func (b *Broker) handleMMI(service string, body [][]byte) (status string, respond bool) {
	if service != "mmi.service" {
		b.log.Warn().Str("service", service).Msg("unrecognized mmi request")
		return "501", true
	}
	if len(body) < 1 {
		b.log.Warn().Msg("mmi.service called with no target service parameter")
		return "", false
	}
	target := string(body[0])
	if b.registry.CanHandle(target) {
		return "200", true
	}
	return "404", true
}
