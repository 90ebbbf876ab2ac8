package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled users",
	Long:  `List every enrolled face record with its metadata, in enrollment order.`,
	RunE:  runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	st := store.Open(cfg.Store.SnapshotPath)

	faces := st.List()
	if len(faces) == 0 {
		fmt.Println("No faces enrolled")
		return nil
	}

	fmt.Printf("%d enrolled face(s):\n", len(faces))
	for _, metadata := range faces {
		fmt.Printf("  user %s", metadata[store.KeyUserID])

		keys := make([]string, 0, len(metadata))
		for key := range metadata {
			if key != store.KeyUserID {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		var parts []string
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, metadata[key]))
		}
		if len(parts) > 0 {
			fmt.Printf("  (%s)", strings.Join(parts, ", "))
		}
		fmt.Println()
	}
	return nil
}
