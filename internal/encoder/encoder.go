// Package encoder adapts the external face-encoding service. The service
// turns raw image bytes into zero or more fixed-dimension embedding vectors,
// one per detected face; everything behind that contract is opaque to us.
package encoder

import "context"

// Detection represents a single detected face.
type Detection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// Result represents the response from the face encoding endpoint.
type Result struct {
	FacesCount int         `json:"faces_count"`
	Faces      []Detection `json:"faces"`
	Model      string      `json:"model"`
}

// Encodings returns the embedding vectors in detection order.
func (r *Result) Encodings() [][]float32 {
	out := make([][]float32, 0, len(r.Faces))
	for _, f := range r.Faces {
		out = append(out, f.Embedding)
	}
	return out
}

// Encoder computes face embeddings for an image.
// Implementations must return an empty Result (not an error) when the image
// decodes fine but contains no face.
type Encoder interface {
	Encode(ctx context.Context, imageData []byte) (*Result, error)
}
