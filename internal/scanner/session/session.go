// Package session drives one scan dialog from capture to resolution.
//
// A session is owned by a single dialog and is not shared between
// goroutines; the process-wide cache and queue it collaborates with do
// their own locking.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scansync/internal/logging"
	"github.com/dmitrijs2005/scansync/internal/scanner/barcode"
	"github.com/dmitrijs2005/scansync/internal/scanner/cache"
	"github.com/dmitrijs2005/scansync/internal/scanner/history"
	"github.com/dmitrijs2005/scansync/internal/scanner/lookup"
	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/dmitrijs2005/scansync/internal/scanner/netmon"
	"github.com/dmitrijs2005/scansync/internal/scanner/queue"
)

// State is the dialog phase.
type State string

const (
	// StateIdle is the pre-scan phase while camera permission is unresolved.
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StateLoading   State = "loading"
	StateFound     State = "found"
	StateNotFound  State = "not_found"
	StateError     State = "error"
	StateQueued    State = "queued"
	StateCommitted State = "committed"
	StateClosed    State = "closed"
)

type event string

const (
	eventGranted     event = "granted"
	eventCapture     event = "capture"
	eventQueued      event = "queued"
	eventResolved    event = "resolved"
	eventMissing     event = "missing"
	eventFailed      event = "failed"
	eventRetry       event = "retry"
	eventConfirm     event = "confirm"
	eventScanAnother event = "scan_another"
	eventDone        event = "done"
)

// transition is the only place dialog phases change. An event not legal in
// the current state returns false.
func transition(s State, e event) (State, bool) {
	switch e {
	case eventGranted:
		if s == StateIdle {
			return StateScanning, true
		}
	case eventCapture:
		if s == StateScanning {
			return StateLoading, true
		}
	case eventQueued:
		if s == StateLoading {
			return StateQueued, true
		}
	case eventResolved:
		if s == StateLoading {
			return StateFound, true
		}
	case eventMissing:
		if s == StateLoading {
			return StateNotFound, true
		}
	case eventFailed:
		if s == StateLoading || s == StateFound {
			return StateError, true
		}
	case eventRetry:
		if s == StateFound || s == StateNotFound || s == StateError {
			return StateScanning, true
		}
	case eventConfirm:
		if s == StateFound {
			return StateCommitted, true
		}
	case eventScanAnother:
		if s == StateQueued {
			return StateScanning, true
		}
	case eventDone:
		if s == StateQueued {
			return StateClosed, true
		}
	}
	return s, false
}

// Request carries the diary context a capture resolves into.
type Request struct {
	Date     string
	Meal     models.MealType
	Servings float64
}

// Deps are the collaborators a session works against.
type Deps struct {
	Cache   *cache.Cache
	Queue   *queue.Queue
	Monitor *netmon.Monitor
	Service lookup.Service
	History *history.History
	Camera  Camera
	Log     logging.Logger
	UserID  string

	// DebounceWindow defaults to DefaultDebounceWindow when zero.
	DebounceWindow time.Duration
}

// Session is the per-dialog state machine.
type Session struct {
	deps Deps
	deb  *Debouncer

	state   State
	code    string
	product *models.Product
	queued  *models.QueuedScan
	lastErr *ScanError
}

func New(deps Deps) *Session {
	return &Session{
		deps:  deps,
		deb:   NewDebouncer(deps.DebounceWindow),
		state: StateIdle,
	}
}

func (s *Session) State() State               { return s.state }
func (s *Session) Code() string               { return s.code }
func (s *Session) Product() *models.Product   { return s.product }
func (s *Session) Queued() *models.QueuedScan { return s.queued }
func (s *Session) Err() *ScanError            { return s.lastErr }

// Start resolves camera permission and opens the scanning phase. Permission
// failures keep the session in idle and never touch the queue or debouncer.
func (s *Session) Start(ctx context.Context) error {
	state := s.deps.Camera.Status(ctx)
	if state == PermissionPrompt {
		state = s.deps.Camera.Request(ctx)
	}

	switch state {
	case PermissionGranted:
		s.apply(eventGranted)
		s.deps.Cache.PrimeMany(s.deps.History.Products())
		return nil
	case PermissionDenied:
		return &ScanError{Kind: ErrPermissionDenied, Message: "camera access denied"}
	default:
		return &ScanError{Kind: ErrCameraUnavail, Message: fmt.Sprintf("camera not usable (state %s)", state)}
	}
}

// Scan handles a camera capture. Duplicate captures of the same code inside
// the debounce window are silently dropped.
func (s *Session) Scan(ctx context.Context, raw string, req Request) error {
	code, err := barcode.Validate(raw)
	if err != nil {
		return &ScanError{Kind: ErrInvalidCode, Message: err.Error(), Err: err}
	}
	if s.deb.Suppress(code) {
		s.deps.Log.Debug(ctx, "duplicate capture suppressed", "code", code)
		return nil
	}
	return s.dispatch(ctx, code, req)
}

// Enter handles a manually typed code. Manual entry bypasses the debouncer
// but gets the same shape validation as a capture.
func (s *Session) Enter(ctx context.Context, raw string, req Request) error {
	code, err := barcode.Validate(raw)
	if err != nil {
		return &ScanError{Kind: ErrInvalidCode, Message: err.Error(), Err: err}
	}
	return s.dispatch(ctx, code, req)
}

// dispatch runs the capture through loading and into its resolution state.
func (s *Session) dispatch(ctx context.Context, code string, req Request) error {
	if err := s.apply(eventCapture); err != nil {
		return err
	}
	s.code = code
	s.product = nil
	s.queued = nil
	s.lastErr = nil

	if !s.deps.Monitor.IsOnline() {
		scan, err := s.deps.Queue.Enqueue(ctx, code, queue.Request{
			Date:     req.Date,
			Meal:     req.Meal,
			Servings: req.Servings,
		})
		if err != nil {
			return s.fail(&ScanError{Kind: ErrNetworkOffline, Message: "offline capture could not be queued", Err: err})
		}
		s.queued = &scan
		s.apply(eventQueued)
		s.deps.Log.Info(ctx, "offline capture queued", "code", code, "id", scan.ID)
		return nil
	}

	if e, ok := s.deps.Cache.Get(code); ok && s.deps.Cache.Fresh(e) {
		p := e.Product
		s.product = &p
		s.apply(eventResolved)
		s.deps.Log.Debug(ctx, "resolved from cache", "code", code)
		return nil
	}

	p, err := s.deps.Service.Lookup(ctx, code)
	if err != nil {
		if lookup.IsNotFound(err) {
			s.apply(eventMissing)
			return nil
		}
		return s.fail(classifyLookup(err))
	}

	s.deps.Cache.Put(code, *p, time.Now())
	s.product = p
	s.apply(eventResolved)
	s.deps.Log.Debug(ctx, "resolved from service", "code", code, "product", p.Name)
	return nil
}

// Confirm commits the found product as a diary entry. On success the
// product joins the recently-resolved history and the session closes.
func (s *Session) Confirm(ctx context.Context, req Request) error {
	if s.state != StateFound || s.product == nil {
		return fmt.Errorf("nothing to confirm in state %s", s.state)
	}
	if req.Servings <= 0 {
		return &ScanError{Kind: ErrInvalidCode, Message: "servings must be positive"}
	}

	entry := models.DiaryEntry{
		UserID:    s.deps.UserID,
		Date:      req.Date,
		Meal:      req.Meal,
		Servings:  req.Servings,
		QuantityG: req.Servings * s.product.ServingSizeG,
		Product:   *s.product,
	}
	if err := s.deps.Service.Commit(ctx, entry); err != nil {
		return s.fail(classifyLookup(err))
	}

	if err := s.deps.History.Add(ctx, *s.product); err != nil {
		// The entry is committed; a history hiccup must not fail the dialog.
		s.deps.Log.Warn(ctx, "recording history entry", "error", err)
	}
	s.apply(eventConfirm)
	s.deps.Log.Info(ctx, "entry committed", "code", s.code, "product", s.product.Name)
	return nil
}

// Retry returns to scanning from any resolution state that offers it.
// The debouncer forgets its last capture so the same code can be scanned
// again right away.
func (s *Session) Retry() error {
	if err := s.apply(eventRetry); err != nil {
		return err
	}
	s.deb.Reset()
	s.product = nil
	s.lastErr = nil
	return nil
}

// ScanAnother resumes scanning after an offline capture was queued.
func (s *Session) ScanAnother() error {
	if err := s.apply(eventScanAnother); err != nil {
		return err
	}
	s.deb.Reset()
	s.queued = nil
	return nil
}

// Done ends the session from the queued state.
func (s *Session) Done() error {
	return s.apply(eventDone)
}

func (s *Session) apply(e event) error {
	next, ok := transition(s.state, e)
	if !ok {
		return fmt.Errorf("event %s not allowed in state %s", e, s.state)
	}
	s.state = next
	return nil
}

func (s *Session) fail(serr *ScanError) error {
	s.lastErr = serr
	s.apply(eventFailed)
	return serr
}
