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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"majordomo/internal/broker"
	"majordomo/internal/logger"
)

var (
	brokerConfigPath string
	brokerInit       bool
	brokerClientAddr string
	brokerWorkerAddr string
	brokerAdminAddr  string
	brokerDebugFlag  bool
)

var brokerCmd = &cobra.Command{
	Use:   "broker",
	Short: "Run the Majordomo broker",
	Long: `Run the Majordomo broker: a ROUTER-based reactor matching client
requests to registered workers, round robin, with heartbeat liveness
tracking and an mmi.* management interface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if brokerDebugFlag {
			logger.SetLevel("debug")
		}

		if brokerInit {
			cfg := broker.DefaultConfig()
			if err := cfg.Save(brokerConfigPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			cmd.Printf("Wrote default configuration to %s\n", brokerConfigPath)
			return nil
		}

		cfg := broker.DefaultConfig()
		if _, err := os.Stat(brokerConfigPath); err == nil {
			cfg, err = broker.LoadConfig(brokerConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}
		if brokerClientAddr != "" {
			cfg.ClientBindAddr = brokerClientAddr
		}
		if brokerWorkerAddr != "" {
			cfg.WorkerBindAddr = brokerWorkerAddr
		}
		if brokerAdminAddr != "" {
			cfg.AdminBindAddr = brokerAdminAddr
		}

		b, err := broker.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize broker: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return b.Run(ctx)
	},
}

func init() {
	brokerCmd.Flags().StringVarP(&brokerConfigPath, "config", "c", "broker.yaml", "path to configuration file")
	brokerCmd.Flags().BoolVar(&brokerInit, "init", false, "write a default configuration file and exit")
	brokerCmd.Flags().StringVar(&brokerClientAddr, "client-addr", "", "client-facing bind address (overrides config)")
	brokerCmd.Flags().StringVar(&brokerWorkerAddr, "worker-addr", "", "worker-facing bind address (overrides config)")
	brokerCmd.Flags().StringVar(&brokerAdminAddr, "admin-addr", "", "admin HTTP bind address (overrides config, empty disables it)")
	brokerCmd.Flags().BoolVarP(&brokerDebugFlag, "debug", "d", false, "enable debug logging")
}
