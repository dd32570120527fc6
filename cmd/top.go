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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var topAdminAddr string

var topCmd = &cobra.Command{
	Use:   "top <admin-addr>",
	Short: "Live dashboard over a broker's admin HTTP surface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := topAdminAddr
		if len(args) == 1 {
			addr = args[0]
		}
		p := tea.NewProgram(newTopModel(addr))
		_, err := p.Run()
		return err
	},
}

func init() {
	topCmd.Flags().StringVar(&topAdminAddr, "admin-addr", "http://localhost:8080", "broker admin HTTP address")
}

var (
	topTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	topHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	topErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

type topStats struct {
	WorkersRegistered  int    `json:"workers_registered"`
	ServicesAvailable  int    `json:"services_available"`
	RequestsRouted     uint64 `json:"requests_routed"`
	RepliesForwarded   uint64 `json:"replies_forwarded"`
	UnknownServiceDrop uint64 `json:"unknown_service_drops"`
	WorkersExpired     uint64 `json:"workers_expired"`
	HeartbeatsSent     uint64 `json:"heartbeats_sent"`
}

type topWorker struct {
	Identity  string    `json:"identity"`
	Service   string    `json:"service"`
	ExpiresAt time.Time `json:"expires_at"`
}

type topTickMsg time.Time

type topFetchedMsg struct {
	stats   topStats
	workers []topWorker
	err     error
}

type topModel struct {
	addr    string
	client  *http.Client
	stats   topStats
	workers []topWorker
	err     error
	quit    bool
}

func newTopModel(addr string) topModel {
	return topModel{addr: addr, client: &http.Client{Timeout: 2 * time.Second}}
}

func (m topModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tea.Tick(time.Second, func(t time.Time) tea.Msg { return topTickMsg(t) }))
}

func (m topModel) fetch() tea.Cmd {
	return func() tea.Msg {
		stats, err := fetchJSON[topStats](m.client, m.addr+"/stats")
		if err != nil {
			return topFetchedMsg{err: err}
		}
		workers, err := fetchJSON[[]topWorker](m.client, m.addr+"/workers")
		if err != nil {
			return topFetchedMsg{err: err}
		}
		return topFetchedMsg{stats: stats, workers: workers}
	}
}

func fetchJSON[T any](client *http.Client, url string) (T, error) {
	var zero T
	resp, err := client.Get(url)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

func (m topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	case topTickMsg:
		return m, tea.Batch(m.fetch(), tea.Tick(time.Second, func(t time.Time) tea.Msg { return topTickMsg(t) }))
	case topFetchedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.workers = msg.workers
		}
	}
	return m, nil
}

func (m topModel) View() string {
	if m.quit {
		return ""
	}
	out := topTitleStyle.Render(fmt.Sprintf(" majordomo top — %s ", m.addr)) + "\n\n"
	if m.err != nil {
		out += topErrorStyle.Render(fmt.Sprintf("fetch failed: %v", m.err)) + "\n"
		return out
	}
	out += fmt.Sprintf("workers: %d   services: %d   routed: %d   forwarded: %d   expired: %d   heartbeats: %d   drops: %d\n\n",
		m.stats.WorkersRegistered, m.stats.ServicesAvailable, m.stats.RequestsRouted,
		m.stats.RepliesForwarded, m.stats.WorkersExpired, m.stats.HeartbeatsSent, m.stats.UnknownServiceDrop)

	out += topHeaderStyle.Render(fmt.Sprintf("%-20s %-20s %s", "IDENTITY", "SERVICE", "EXPIRES")) + "\n"
	for _, w := range m.workers {
		out += fmt.Sprintf("%-20s %-20s %s\n", w.Identity, w.Service, w.ExpiresAt.Format(time.RFC3339))
	}
	out += "\n(press q to quit)\n"
	return out
}
