// Package store implements the face encoding store: an ordered, mutex-guarded
// collection of face records matched by Euclidean distance and persisted to a
// single snapshot file after every mutation.
package store

// KeyUserID is the metadata key that every stored record carries.
// It is set by Add and overwrites any caller-supplied value.
const KeyUserID = "user_id"

// FaceRecord pairs one face encoding with its metadata.
// Records are immutable once stored; updates are modeled as delete + add.
type FaceRecord struct {
	Encoding []float32
	Metadata map[string]string
}

// Match is the result of a successful identification.
type Match struct {
	Metadata   map[string]string
	Distance   float64
	Confidence float64
}

// cloneMetadata returns an independent copy of a metadata map.
func cloneMetadata(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
