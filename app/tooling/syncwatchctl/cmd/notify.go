package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abumaher/syncwatch/foundation/monitor/notify"
	"github.com/abumaher/syncwatch/foundation/registry"
	"github.com/abumaher/syncwatch/foundation/registry/storage"
)

var ntfyServer string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a test notification to the registry's topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := rootCmd.PersistentFlags().GetString("registry")
		if err != nil {
			return err
		}

		return runNotify(path, args[0])
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringVarP(&ntfyServer, "server", "s", "https://ntfy.sh", "Url of the ntfy server.")
}

func runNotify(path string, message string) error {
	reg, err := registry.New(storage.NewDisk(path), nil)
	if err != nil {
		return err
	}

	n := notify.New(ntfyServer, reg.Topic(), 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := n.Send(ctx, "syncwatch test", message); err != nil {
		return err
	}

	fmt.Println("notification sent to topic", reg.Topic())

	return nil
}
