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
	"os"

	"github.com/spf13/cobra"
	"majordomo/internal/logger"
)

var (
	verbose bool
	log     = logger.New()
)

var rootCmd = &cobra.Command{
	Use:   "majordomo",
	Short: "Majordomo - a ZeroMQ service-oriented broker (MDP/0.2)",
	Long: `Majordomo runs and exercises a Majordomo Protocol v0.2 broker: a
ROUTER-based service broker that matches client requests to registered
workers, round robin, with heartbeat-based liveness tracking.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetSilentMode(false)
		// SetSilentMode resets the level to info; re-apply the
		// environment's level, then let --verbose override it.
		if level := os.Getenv(logger.EnvLevel); level != "" {
			logger.SetLevel(level)
		}
		if verbose {
			logger.SetLevel("debug")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(brokerCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(topCmd)
}