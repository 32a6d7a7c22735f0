// Package common defines shared sentinel errors used across the scan
// pipeline. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Queue / history errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorInvalidBarcode = errors.New("invalid barcode")
)
