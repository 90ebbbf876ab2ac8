package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image-file>",
	Short: "Enroll a user's face from an image file",
	Long: `Enroll a user's face into the store. The image is sent to the encoding
service and the resulting face encoding is stored under the given user id.
Extra metadata can be attached with repeated --meta key=value flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("user", "", "Numeric user id to enroll (required)")
	enrollCmd.Flags().StringSlice("meta", nil, "Additional metadata as key=value, repeatable")
	_ = enrollCmd.MarkFlagRequired("user")
}

// parseMetaFlags turns repeated key=value flags into a metadata map.
func parseMetaFlags(pairs []string) (map[string]string, error) {
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --meta value %q, expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	userID := mustGetString(cmd, "user")
	if _, err := strconv.Atoi(userID); err != nil {
		return fmt.Errorf("user id must be an integer, got %q", userID)
	}

	metadata, err := parseMetaFlags(mustGetStringSlice(cmd, "meta"))
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	rec, err := newRecognizer(config.Load())
	if err != nil {
		return err
	}

	result, err := rec.AddFace(cmd.Context(), imageData, userID, metadata)
	if err != nil {
		return fmt.Errorf("enrolling face: %w", err)
	}
	if !result.Added {
		return fmt.Errorf("no face found in %s", args[0])
	}

	fmt.Printf("Enrolled user %s (%d face(s) detected in image)\n", userID, result.FacesDetected)
	return nil
}
