// Package storage implements the on-disk representation of the node registry.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abumaher/syncwatch/foundation/registry"
)

// Disk represents the storage implementation for reading and storing the
// registry document in a single JSON file on disk. This implements the
// registry.Storage interface.
type Disk struct {
	path string
}

// NewDisk constructs a Disk value for use.
func NewDisk(path string) *Disk {
	return &Disk{path: filepath.Clean(path)}
}

// Path returns the location of the registry file.
func (d *Disk) Path() string {
	return d.path
}

// Load reads and decodes the registry document from disk.
func (d *Disk) Load() (registry.File, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return registry.File{}, fmt.Errorf("reading registry file: %w", err)
	}

	var file registry.File
	if err := json.Unmarshal(data, &file); err != nil {
		return registry.File{}, fmt.Errorf("decoding registry file %s: %w", d.path, err)
	}

	return file, nil
}

// Save writes the registry document to disk. The document is written to a
// temporary file in the same directory and renamed over the original so a
// crash mid-write can never leave a corrupt registry behind.
func (d *Disk) Save(file registry.File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("creating temp registry file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp registry file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp registry file: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing registry file: %w", err)
	}

	return nil
}
