package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/store"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image-file>",
	Short: "Identify a user from a face image",
	Long: `Identify a user by matching a face image against the enrolled store.
The closest enrolled face within the tolerance wins; a lower tolerance
makes matching stricter.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("tolerance", 0, "Maximum matching distance (0 = use configured default)")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	tolerance := mustGetFloat64(cmd, "tolerance")
	if tolerance <= 0 {
		tolerance = cfg.Defaults.Matching.Tolerance
	}

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	rec, err := newRecognizer(cfg)
	if err != nil {
		return err
	}

	result, err := rec.IdentifyFace(cmd.Context(), imageData, tolerance)
	if err != nil {
		return fmt.Errorf("identifying face: %w", err)
	}

	if result.FacesDetected == 0 {
		fmt.Println("No face found in image")
		return nil
	}
	if result.Match == nil {
		fmt.Printf("No match within tolerance %.3f (%d face(s) detected)\n", tolerance, result.FacesDetected)
		return nil
	}

	fmt.Printf("Identified user %s\n", result.Match.Metadata[store.KeyUserID])
	fmt.Printf("  Distance:   %.4f\n", result.Match.Distance)
	fmt.Printf("  Confidence: %.4f\n", result.Match.Confidence)
	for key, value := range result.Match.Metadata {
		if key == store.KeyUserID {
			continue
		}
		fmt.Printf("  %s: %s\n", key, value)
	}
	return nil
}
