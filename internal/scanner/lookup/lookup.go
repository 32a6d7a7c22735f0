// Package lookup talks to the remote nutrition service: barcode resolution
// and the diary-write commit.
//
// Failures carry a typed Kind instead of the message-substring heuristic the
// pipeline used to rely on. The retry policy is unchanged: unavailable and
// timeout are transient (retry later), everything else is permanent.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
)

// Kind classifies a lookup failure.
type Kind string

const (
	// KindNotFound is a definitive negative result: the code is not in
	// the database. Never retried.
	KindNotFound Kind = "not_found"

	// KindUnavailable is connectivity or infrastructure trouble between
	// here and the service. Retried on a later pass.
	KindUnavailable Kind = "unavailable"

	// KindTimeout is a request that ran out its deadline. Treated like
	// unavailable: the network path is suspect, retry later.
	KindTimeout Kind = "timeout"

	// KindUpstream is a definitive service-side rejection. Not retried.
	KindUpstream Kind = "upstream"
)

// Error is a classified lookup failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to upstream for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUpstream
}

// IsTransient reports whether the failure is worth retrying on a later
// sync pass.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindUnavailable, KindTimeout:
		return true
	default:
		return false
	}
}

// IsNotFound reports a definitive negative lookup result.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Service resolves codes to products and commits accepted scans as diary
// entries. Implementations classify failures as *Error.
type Service interface {
	Lookup(ctx context.Context, code string) (*models.Product, error)
	Commit(ctx context.Context, entry models.DiaryEntry) error
}
