package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/store"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every enrolled face from the store",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	st := store.Open(cfg.Store.SnapshotPath)

	count := st.Count()
	if count == 0 {
		fmt.Println("Face store is already empty")
		return nil
	}

	if !mustGetBool(cmd, "yes") {
		fmt.Printf("This will delete all %d enrolled face(s). Continue? [y/N]: ", count)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := st.Clear(); err != nil {
		return fmt.Errorf("clearing face store: %w", err)
	}

	fmt.Printf("Removed %d face(s)\n", count)
	return nil
}
