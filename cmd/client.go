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
	"time"

	"github.com/spf13/cobra"
	"majordomo/internal/mdpclient"
)

var (
	clientBrokerAddr string
	clientTimeout    time.Duration
)

var clientCmd = &cobra.Command{
	Use:   "client <service> <body>",
	Short: "Send one request to a service and print every reply",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, body := args[0], args[1]

		c, err := mdpclient.New(clientBrokerAddr)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
		defer cancel()

		replies, err := c.Request(ctx, service, [][]byte{[]byte(body)}, 100*time.Millisecond)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}

		for reply := range replies {
			if reply.Err != nil {
				log.Error().Err(reply.Err).Msg("request failed")
				return reply.Err
			}
			for _, frame := range reply.Body {
				cmd.Println(string(frame))
			}
			if reply.Final {
				break
			}
		}
		return nil
	},
}

func init() {
	clientCmd.Flags().StringVar(&clientBrokerAddr, "broker-addr", "tcp://localhost:5000", "client-facing broker address")
	clientCmd.Flags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "overall request timeout")
}
