package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	libzmx "github.com/dariussullivan/libzmx"
)

// FSStore implements Store with one JSON file per prescription under
// <baseDir>/prescriptions/. Writes use the temp file + rename pattern so a
// crash never leaves a half-written snapshot behind.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-based store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	dir := filepath.Join(baseDir, "prescriptions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) path(name string) string {
	return filepath.Join(fs.baseDir, "prescriptions", name+".json")
}

// validName rejects names that would escape the store directory.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("prescription name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid prescription name %q", name)
	}
	return nil
}

// SavePrescription atomically saves a snapshot under the given name.
func (fs *FSStore) SavePrescription(name string, snap *libzmx.Snapshot) error {
	if err := validName(name); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize prescription: %w", err)
	}

	tempPath := fs.path(name) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp prescription file: %w", err)
	}
	if err := os.Rename(tempPath, fs.path(name)); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename prescription file: %w", err)
	}

	slog.Debug("Prescription saved", "name", name, "surfaces", snap.Count())
	return nil
}

// LoadPrescription retrieves the snapshot saved under the given name.
func (fs *FSStore) LoadPrescription(name string) (*libzmx.Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Name: name}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read prescription file: %w", err)
	}

	var snap libzmx.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse prescription file: %w", err)
	}
	return &snap, nil
}

// ListPrescriptions returns metadata for every saved prescription.
func (fs *FSStore) ListPrescriptions() ([]PrescriptionInfo, error) {
	dir := filepath.Join(fs.baseDir, "prescriptions")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan store directory: %w", err)
	}

	var infos []PrescriptionInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		snap, err := fs.LoadPrescription(name)
		if err != nil {
			slog.Warn("Skipping unreadable prescription", "name", name, "error", err)
			continue
		}
		infos = append(infos, PrescriptionInfo{Name: name, Surfaces: snap.Count()})
	}
	return infos, nil
}

// DeletePrescription removes the named prescription.
func (fs *FSStore) DeletePrescription(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(fs.path(name))
	if os.IsNotExist(err) {
		return &NotFoundError{Name: name}
	} else if err != nil {
		return fmt.Errorf("failed to delete prescription file: %w", err)
	}
	return nil
}
