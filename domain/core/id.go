package core

import (
	"github.com/google/uuid"
)

// RunID identifies one analysis run; it is stamped on every report and log line
type RunID string

// NewRunID creates a time-ordered run identifier using UUID v7
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

// String returns the string representation
func (id RunID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id RunID) IsEmpty() bool {
	return id == ""
}
