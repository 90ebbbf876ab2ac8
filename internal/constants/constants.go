// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Upload constants
const (
	// MaxUploadSize is the maximum accepted image upload size in bytes
	MaxUploadSize = 16 << 20 // 16MB
)

// Matching constants
const (
	// DefaultTolerance is the default maximum Euclidean distance for a face match
	// Lower values = stricter matching
	DefaultTolerance = 0.6
)

// Image processing constants
const (
	// MaxImageSize is the maximum dimension (width or height) sent to the encoder
	MaxImageSize = 1920
)

// Metadata keys derived by the engine rather than supplied by callers
const (
	// KeyEncoderModel records which encoder model produced a stored encoding
	KeyEncoderModel = "encoder_model"
)
