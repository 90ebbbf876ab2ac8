package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete all enrolled faces for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	st := store.Open(cfg.Store.SnapshotPath)

	removed, err := st.Delete(args[0])
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if !removed {
		fmt.Printf("User %s not found\n", args[0])
		return nil
	}

	fmt.Printf("Deleted user %s, %d face(s) remain\n", args[0], st.Count())
	return nil
}
