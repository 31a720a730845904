package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abumaher/syncwatch/foundation/registry"
	"github.com/abumaher/syncwatch/foundation/registry/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Re-arm notifications for a node",
	Long:  "Reset the notified flag for a node so the next completed sync triggers a fresh notification.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := rootCmd.PersistentFlags().GetString("registry")
		if err != nil {
			return err
		}

		return runReset(path, args[0])
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(path string, name string) error {
	reg, err := registry.New(storage.NewDisk(path), nil)
	if err != nil {
		return err
	}

	if err := reg.ResetNotified(name); err != nil {
		return err
	}

	fmt.Println("notifications re-armed for node", name)

	return nil
}
