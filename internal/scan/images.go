package scan

import "os"

// OSImageStore implements the ImageStore boundary against the real
// filesystem.
type OSImageStore struct{}

// Exists reports whether a file is present at path.
func (OSImageStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file at path.
func (OSImageStore) Remove(path string) error {
	return os.Remove(path)
}
