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

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"majordomo/internal/mdpworker"
)

var (
	workerBrokerAddr string
	workerKind       string
)

var workerCmd = &cobra.Command{
	Use:   "worker <service>",
	Short: "Run a demo worker registered under <service>",
	Long: `Run a reference MDP/Worker v2 peer offering one of two built-in
demo handlers ("echo" or "upper") under the given service name, for
exercising a running broker.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]
		handler, err := demoHandler(workerKind)
		if err != nil {
			return err
		}

		w := mdpworker.New(workerBrokerAddr, service, handler)

		log.Info().Str("service", service).Str("broker", workerBrokerAddr).Msg("starting demo worker")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return w.Run(ctx)
	},
}

func demoHandler(kind string) (mdpworker.Handler, error) {
	switch kind {
	case "echo", "":
		return func(body []byte) ([]byte, error) { return body, nil }, nil
	case "upper":
		return func(body []byte) ([]byte, error) { return bytes.ToUpper(body), nil }, nil
	default:
		return nil, fmt.Errorf("unknown worker kind %q, want %q", kind, strings.Join([]string{"echo", "upper"}, " or "))
	}
}

func init() {
	workerCmd.Flags().StringVar(&workerBrokerAddr, "broker-addr", "tcp://localhost:6000", "worker-facing broker address")
	workerCmd.Flags().StringVar(&workerKind, "kind", "echo", "demo handler to run: echo or upper")
}
