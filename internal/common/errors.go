// Package common defines the metadata keys and sentinel errors shared by the
// persistence layer and the services. Callers match errors with errors.Is.
package common

import "errors"

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotRegistered means the device has no stored credentials yet, so
	// authenticated requests cannot be built.
	ErrNotRegistered = errors.New("device not registered")

	// ErrInvalidInput reports a registration form that failed local validation.
	ErrInvalidInput = errors.New("invalid input")
)
