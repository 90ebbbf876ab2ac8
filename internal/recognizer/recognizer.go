// Package recognizer wires the encoder adapter and the encoding store into
// the image-bytes-in, match-out operations the service boundary consumes.
package recognizer

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-id/internal/constants"
	"github.com/kozaktomas/face-id/internal/encoder"
	"github.com/kozaktomas/face-id/internal/store"
)

// Recognizer identifies and enrolls users from face images.
type Recognizer struct {
	encoder      encoder.Encoder
	store        *store.Store
	maxImageSize int
}

// AddResult reports the outcome of an enrollment attempt.
type AddResult struct {
	Added bool
	// FacesDetected is the raw detection count from the encoder. Anything
	// beyond the first detection is discarded; callers that want a stricter
	// multi-face policy can inspect this.
	FacesDetected int
}

// IdentifyResult pairs an optional match with the raw detection count.
type IdentifyResult struct {
	Match         *store.Match
	FacesDetected int
}

// New creates a recognizer. maxImageSize bounds the larger image dimension
// before bytes are sent to the encoder.
func New(enc encoder.Encoder, st *store.Store, maxImageSize int) *Recognizer {
	return &Recognizer{encoder: enc, store: st, maxImageSize: maxImageSize}
}

// encode validates, downscales and encodes an image.
func (r *Recognizer) encode(ctx context.Context, imageData []byte) (*encoder.Result, error) {
	if err := encoder.ValidateImage(imageData); err != nil {
		return nil, err
	}

	prepared, err := encoder.ResizeImage(imageData, r.maxImageSize)
	if err != nil {
		return nil, err
	}

	result, err := r.encoder.Encode(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return result, nil
}

// AddFace enrolls a user's face. Added is false when the encoder found no
// face in the image; that is the ordinary negative outcome. The encoder model
// name is recorded in the stored metadata under the encoder_model key so a
// later encoder upgrade can be detected per record.
func (r *Recognizer) AddFace(ctx context.Context, imageData []byte, userID string, metadata map[string]string) (*AddResult, error) {
	result, err := r.encode(ctx, imageData)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if result.Model != "" {
		meta[constants.KeyEncoderModel] = result.Model
	}

	added, err := r.store.Add(result.Encodings(), userID, meta)
	if err != nil {
		return nil, err
	}
	return &AddResult{Added: added, FacesDetected: len(result.Faces)}, nil
}

// IdentifyFace matches a face image against the store. Match is nil when no
// face was detected or nothing in the store is within tolerance.
func (r *Recognizer) IdentifyFace(ctx context.Context, imageData []byte, tolerance float64) (*IdentifyResult, error) {
	result, err := r.encode(ctx, imageData)
	if err != nil {
		return nil, err
	}

	match := r.store.Identify(result.Encodings(), tolerance)
	return &IdentifyResult{Match: match, FacesDetected: len(result.Faces)}, nil
}

// ListFaces returns all stored metadata in insertion order.
func (r *Recognizer) ListFaces() []map[string]string {
	return r.store.List()
}

// DeleteUser removes every record enrolled for userID.
func (r *Recognizer) DeleteUser(userID string) (bool, error) {
	return r.store.Delete(userID)
}

// ClearStore removes all enrolled faces.
func (r *Recognizer) ClearStore() error {
	return r.store.Clear()
}

// Count returns the number of stored face records.
func (r *Recognizer) Count() int {
	return r.store.Count()
}
