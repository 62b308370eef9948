// Package storage keeps small state files in a flat directory.
package storage

// Provider is the interface for state file operations.
type Provider interface {
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically replaces the named file.
	Write(name string, content []byte) error
	// Root returns the absolute directory path.
	Root() string
}
