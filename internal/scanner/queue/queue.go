// Package queue implements the bounded, durable offline scan queue.
//
// Every mutation rewrites the whole queue document through the injected
// store before returning, so a crash between a mutation and the next read
// never loses or duplicates a record.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/scansync/internal/common"
	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/dmitrijs2005/scansync/internal/scanner/store"
)

// StorageKey is the fixed key the queue document lives under.
const StorageKey = "barcode-offline-queue"

const (
	DefaultMaxSize         = 50
	DefaultFailedRetention = 7 * 24 * time.Hour
)

// Config bounds the queue.
type Config struct {
	// MaxSize is the maximum number of resident records. Exceeding it
	// evicts the oldest records first.
	MaxSize int

	// FailedRetention is how long failed records are kept before Load
	// silently purges them.
	FailedRetention time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.FailedRetention <= 0 {
		c.FailedRetention = DefaultFailedRetention
	}
}

// Request carries the diary context an offline capture is replayed with.
type Request struct {
	Date        string
	Meal        models.MealType
	Servings    float64
	ProductName string
}

// Outcome classifies one item's sync attempt.
type Outcome int

const (
	// OutcomeSucceeded removes the record from the queue.
	OutcomeSucceeded Outcome = iota + 1
	// OutcomeFailed marks the record failed; it stays visible until
	// cleared or retention expiry.
	OutcomeFailed
	// OutcomeRetry reverts the record to pending for the next pass.
	OutcomeRetry
)

// Queue is the process-wide offline scan queue. Safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []models.QueuedScan
	store store.Store
	cfg   Config
	now   func() time.Time
	newID func() string
}

func New(s store.Store, cfg Config) *Queue {
	cfg.applyDefaults()
	return &Queue{
		store: s,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewWithDeps is New with injected ID and time sources for tests.
func NewWithDeps(s store.Store, cfg Config, newID func() string, now func() time.Time) *Queue {
	q := New(s, cfg)
	q.newID = newID
	q.now = now
	return q
}

// Load reads the durable document, purges failed records older than the
// retention horizon, and reverts records stranded in syncing by a crash
// back to pending. Changes made by the purge are persisted immediately.
func (q *Queue) Load(ctx context.Context) error {
	data, err := q.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading queue: %w", err)
	}

	var items []models.QueuedScan
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding queue: %w", err)
		}
	}

	cutoff := q.now().Add(-q.cfg.FailedRetention)
	changed := false
	kept := items[:0]
	for _, it := range items {
		if it.Status == models.StatusFailed && it.QueuedAt.Before(cutoff) {
			changed = true
			continue
		}
		if it.Status == models.StatusSyncing {
			it.Status = models.StatusPending
			changed = true
		}
		kept = append(kept, it)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = kept
	if changed {
		return q.persistLocked(ctx)
	}
	return nil
}

// Enqueue appends a pending record built from code and req. When the queue
// would exceed its bound, the oldest records by queued timestamp are evicted
// first; the record being inserted is never evicted by its own insertion.
func (q *Queue) Enqueue(ctx context.Context, code string, req Request) (models.QueuedScan, error) {
	scan := models.QueuedScan{
		ID:          q.newID(),
		Barcode:     code,
		Date:        req.Date,
		Meal:        req.Meal,
		Servings:    req.Servings,
		ProductName: req.ProductName,
		QueuedAt:    q.now(),
		Status:      models.StatusPending,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, scan)
	if len(q.items) > q.cfg.MaxSize {
		// Oldest first; the stable sort keeps the new record last among
		// equal timestamps, so trimming from the front cannot drop it.
		sort.SliceStable(q.items, func(i, j int) bool {
			return q.items[i].QueuedAt.Before(q.items[j].QueuedAt)
		})
		q.items = q.items[len(q.items)-q.cfg.MaxSize:]
	}

	if err := q.persistLocked(ctx); err != nil {
		return models.QueuedScan{}, err
	}
	return scan, nil
}

// Remove deletes a single record unconditionally.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, it := range q.items {
		if it.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return q.persistLocked(ctx)
		}
	}
	return fmt.Errorf("queued scan %s: %w", id, common.ErrorNotFound)
}

// ClearFailed drops every failed record.
func (q *Queue) ClearFailed(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, it := range q.items {
		if it.Status != models.StatusFailed {
			kept = append(kept, it)
		}
	}
	q.items = kept
	return q.persistLocked(ctx)
}

// ClearAll empties the queue.
func (q *Queue) ClearAll(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	return q.persistLocked(ctx)
}

// MarkPendingSyncing flips every pending record to syncing and returns the
// flipped records in queue order, the snapshot a sync pass works from.
func (q *Queue) MarkPendingSyncing(ctx context.Context) ([]models.QueuedScan, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var snapshot []models.QueuedScan
	for i := range q.items {
		if q.items[i].Status == models.StatusPending {
			q.items[i].Status = models.StatusSyncing
			snapshot = append(snapshot, q.items[i])
		}
	}
	if len(snapshot) == 0 {
		return nil, nil
	}
	if err := q.persistLocked(ctx); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Complete applies one item's sync outcome and persists. A record removed
// in the meantime is a no-op: user removal wins over the sync result.
func (q *Queue) Complete(ctx context.Context, id string, outcome Outcome, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := -1
	for i, it := range q.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	switch outcome {
	case OutcomeSucceeded:
		q.items = append(q.items[:idx], q.items[idx+1:]...)
	case OutcomeFailed:
		q.items[idx].Status = models.StatusFailed
		q.items[idx].ErrorMessage = errMsg
	case OutcomeRetry:
		q.items[idx].Status = models.StatusPending
		q.items[idx].ErrorMessage = ""
	default:
		return fmt.Errorf("unknown outcome %d", outcome)
	}
	return q.persistLocked(ctx)
}

// Items returns a copy of the queue in storage order.
func (q *Queue) Items() []models.QueuedScan {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.QueuedScan, len(q.items))
	copy(out, q.items)
	return out
}

// Pending returns the records currently eligible for a sync pass.
func (q *Queue) Pending() []models.QueuedScan {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []models.QueuedScan
	for _, it := range q.items {
		if it.Status == models.StatusPending {
			out = append(out, it)
		}
	}
	return out
}

func (q *Queue) PendingCount() int {
	return q.countByStatus(models.StatusPending)
}

func (q *Queue) FailedCount() int {
	return q.countByStatus(models.StatusFailed)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) countByStatus(status models.ScanStatus) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, it := range q.items {
		if it.Status == status {
			n++
		}
	}
	return n
}

func (q *Queue) persistLocked(ctx context.Context) error {
	items := q.items
	if items == nil {
		items = []models.QueuedScan{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	if err := q.store.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting queue: %w", err)
	}
	return nil
}
