package store

import (
	"fmt"

	libzmx "github.com/dariussullivan/libzmx"
)

// Store persists prescription snapshots under symbolic names, so a lens can
// be captured from the design server and re-pushed later without the
// original file.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the prescription doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SavePrescription atomically saves a snapshot under the given name,
	// overwriting any previous snapshot with that name.
	SavePrescription(name string, snap *libzmx.Snapshot) error

	// LoadPrescription retrieves the snapshot saved under the given name.
	// Returns ErrNotFound if no such prescription exists.
	LoadPrescription(name string) (*libzmx.Snapshot, error)

	// ListPrescriptions returns metadata for all saved prescriptions.
	ListPrescriptions() ([]PrescriptionInfo, error)

	// DeletePrescription removes the named prescription.
	// Returns ErrNotFound if it does not exist.
	DeletePrescription(name string) error
}

// PrescriptionInfo describes one saved prescription.
type PrescriptionInfo struct {
	Name     string `json:"name"`
	Surfaces int    `json:"surfaces"`
}

// ErrNotFound is returned when a requested prescription does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing prescription error.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "prescription not found"
	}
	return fmt.Sprintf("prescription not found: %s", e.Name)
}

// Is makes all NotFoundError values match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
