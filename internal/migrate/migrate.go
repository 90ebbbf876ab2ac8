package migrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/face-id/internal/recognizer"
)

// Enroller is the slice of the recognizer the migration needs.
type Enroller interface {
	AddFace(ctx context.Context, imageData []byte, userID string, metadata map[string]string) (*recognizer.AddResult, error)
}

// Summary reports the outcome of one migration run.
type Summary struct {
	RunID    string `json:"run_id"`
	Total    int    `json:"total"`
	Enrolled int    `json:"enrolled"`
	NoFace   int    `json:"no_face"`
	Failed   int    `json:"failed"`
}

// Runner executes the full ETL: identities from the source database, image
// bytes from remote storage, enrollment through the recognizer. Per-row
// failures are logged and skipped so one bad image never aborts the run.
type Runner struct {
	source   IdentitySource
	enroller Enroller
	client   *http.Client
	progress io.Writer
}

// NewRunner creates a migration runner. progress receives the progress bar
// output; pass io.Discard for non-interactive runs.
func NewRunner(source IdentitySource, enroller Enroller, downloadTimeout time.Duration, progress io.Writer) *Runner {
	return &Runner{
		source:   source,
		enroller: enroller,
		client:   &http.Client{Timeout: downloadTimeout},
		progress: progress,
	}
}

// Run enrolls every identity from the source and returns a summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	identities, err := r.source.Identities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading identities: %w", err)
	}

	summary := &Summary{RunID: uuid.NewString(), Total: len(identities)}
	fmt.Printf("Migration %s: %d identities to enroll\n", summary.RunID, summary.Total)

	bar := progressbar.NewOptions(len(identities),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(r.progress),
	)

	for _, identity := range identities {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := r.enrollOne(ctx, identity); err != nil {
			if err == errNoFace {
				summary.NoFace++
			} else {
				summary.Failed++
				fmt.Printf("Error processing user %s: %v, skipping\n", identity.UserID, err)
			}
		} else {
			summary.Enrolled++
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nMigration %s done: %d enrolled, %d without a face, %d failed\n",
		summary.RunID, summary.Enrolled, summary.NoFace, summary.Failed)
	return summary, nil
}

var errNoFace = fmt.Errorf("no face detected")

// enrollOne downloads one identity's reference image and enrolls it.
func (r *Runner) enrollOne(ctx context.Context, identity Identity) error {
	imageData, err := r.download(ctx, identity.ImageURL)
	if err != nil {
		return err
	}

	metadata := map[string]string{
		"name":  identity.Name,
		"email": identity.Email,
	}
	if normalized := NormalizeName(identity.Name); normalized != "" {
		metadata["name_normalized"] = normalized
	}

	result, err := r.enroller.AddFace(ctx, imageData, identity.UserID, metadata)
	if err != nil {
		return err
	}
	if !result.Added {
		return errNoFace
	}
	return nil
}

// download fetches the reference image bytes from remote storage.
func (r *Runner) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	return data, nil
}
