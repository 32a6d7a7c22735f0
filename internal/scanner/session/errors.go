package session

import (
	"errors"

	"github.com/dmitrijs2005/scansync/internal/scanner/lookup"
)

// ErrorKind names the failure categories a scan dialog can surface.
type ErrorKind string

const (
	ErrInvalidCode      ErrorKind = "invalid_code"
	ErrPermissionDenied ErrorKind = "camera_permission_denied"
	ErrCameraUnavail    ErrorKind = "camera_unavailable"
	ErrNetworkOffline   ErrorKind = "network_offline"
	ErrLookupTimeout    ErrorKind = "lookup_timeout"
	ErrAPI              ErrorKind = "api_error"
)

// ScanError is a user-facing failure with a stable kind for the UI to
// branch on.
type ScanError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScanError) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind)
}

func (e *ScanError) Unwrap() error { return e.Err }

// classifyLookup maps a lookup failure to the kind a dialog shows.
// Not-found is a state of its own and never reaches here.
func classifyLookup(err error) *ScanError {
	var le *lookup.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case lookup.KindTimeout:
			return &ScanError{Kind: ErrLookupTimeout, Message: le.Message, Err: err}
		case lookup.KindUnavailable:
			return &ScanError{Kind: ErrNetworkOffline, Message: le.Message, Err: err}
		}
	}
	return &ScanError{Kind: ErrAPI, Message: err.Error(), Err: err}
}
