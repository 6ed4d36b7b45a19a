// Package storage defines where uploaded document files live.
package storage

import "io"

// Stored describes a file after it has been written.
type Stored struct {
	Path     string // relative to the storage root
	Size     int64
	Checksum string
}

// Provider is the interface for document file operations. All paths are
// relative to the storage root.
type Provider interface {
	// Save atomically writes r to path and returns its size and checksum.
	Save(path string, r io.Reader) (Stored, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Open opens the file at path for streaming.
	Open(path string) (io.ReadCloser, error)
	// Delete removes the file at path. A missing file is not an error.
	Delete(path string) error
}
