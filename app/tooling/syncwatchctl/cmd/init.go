package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abumaher/syncwatch/foundation/registry"
	"github.com/abumaher/syncwatch/foundation/registry/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a sample node registry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := rootCmd.PersistentFlags().GetString("registry")
		if err != nil {
			return err
		}

		return runInit(path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New("registry file already exists at " + path)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if err := storage.NewDisk(path).Save(registry.Sample()); err != nil {
		return fmt.Errorf("writing sample registry: %w", err)
	}

	fmt.Println("generated a new registry at", path)

	return nil
}
