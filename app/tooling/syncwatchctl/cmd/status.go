package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abumaher/syncwatch/foundation/monitor/state"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live status of all monitored nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(statusURL)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusURL, "url", "u", "http://localhost:8080", "Url of the syncwatch service.")
}

func runStatus(url string) error {
	client := http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url + "/v1/status")
	if err != nil {
		return fmt.Errorf("querying service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status code %d", resp.StatusCode)
	}

	var statuses map[string]state.NodeStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return fmt.Errorf("decoding status response: %w", err)
	}

	if len(statuses) == 0 {
		fmt.Println("no nodes polled yet")
		return nil
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-20s %-12s %-12s %-10s %-10s %-12s %-10s %s\n",
		"NODE", "CURRENT", "TARGET", "PROGRESS", "RATE", "ETA", "PEERS", "STATE")

	for _, name := range names {
		st := statuses[name]

		stateStr := color.YellowString("syncing")
		switch {
		case st.Peers == 0:
			stateStr = color.RedString("no peers")
		case st.Synced && st.Notified:
			stateStr = color.GreenString("synced, notified")
		case st.Synced:
			stateStr = color.GreenString("synced")
		}

		fmt.Printf("%-20s %-12d %-12d %-10s %-10s %-12s %-10d %s\n",
			name, st.CurrentBlock, st.TargetBlock, st.Metrics.PercentString(),
			fmt.Sprintf("%.2f b/s", st.Metrics.RatePerSec), st.Metrics.ETAString(),
			st.Peers, stateStr)
	}

	return nil
}
