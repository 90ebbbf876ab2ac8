package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// snapshot is the on-disk representation of the full store.
// gob preserves []float32 values bit-exactly and keeps slice order,
// so a snapshot round-trips the record sequence without loss.
type snapshot struct {
	Version int
	Records []FaceRecord
}

const snapshotVersion = 1

// writeSnapshot serializes all records and atomically replaces the snapshot
// file. The data is staged in a temp file in the same directory and renamed
// into place so a crash mid-write never leaves a truncated snapshot behind.
func writeSnapshot(path string, records []FaceRecord) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot{Version: snapshotVersion, Records: records}); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// readSnapshot loads the record sequence from the snapshot file.
// A missing file is not an error and yields an empty sequence; anything
// unreadable or undecodable is reported as a CorruptSnapshotError.
func readSnapshot(path string) ([]FaceRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}
	if snap.Version != snapshotVersion {
		return nil, &CorruptSnapshotError{Path: path, Err: fmt.Errorf("unsupported snapshot version %d", snap.Version)}
	}

	return snap.Records, nil
}
