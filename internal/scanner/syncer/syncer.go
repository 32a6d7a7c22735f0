// Package syncer drains the offline scan queue against the remote service.
//
// A pass snapshots the pending records, works through them in small
// concurrent batches, and applies each item's outcome back to the queue
// individually, so records added or removed mid-pass are never touched.
package syncer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/scansync/internal/logging"
	"github.com/dmitrijs2005/scansync/internal/scanner/lookup"
	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/dmitrijs2005/scansync/internal/scanner/netmon"
	"github.com/dmitrijs2005/scansync/internal/scanner/queue"
)

// DefaultConcurrency bounds how many queued scans sync at once.
const DefaultConcurrency = 3

// Engine replays queued offline scans once connectivity returns.
type Engine struct {
	queue       *queue.Queue
	svc         lookup.Service
	monitor     *netmon.Monitor
	log         logging.Logger
	userID      string
	concurrency int
	inFlight    atomic.Bool
}

func New(q *queue.Queue, svc lookup.Service, m *netmon.Monitor, log logging.Logger, userID string, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		queue:       q,
		svc:         svc,
		monitor:     m,
		log:         log,
		userID:      userID,
		concurrency: concurrency,
	}
}

// AutoSync arms the engine to run one pass each time connectivity comes
// back while pending scans exist. Passes run on their own goroutine; ctx
// bounds their lifetime.
func (e *Engine) AutoSync(ctx context.Context) {
	e.monitor.OnTransition(func(online bool) {
		if !online || e.queue.PendingCount() == 0 {
			return
		}
		go func() {
			if _, err := e.SyncQueue(ctx); err != nil {
				e.log.Error(ctx, "auto sync pass failed", "error", err)
			}
		}()
	})
}

// SyncQueue runs a single sync pass and reports what happened to each
// record it picked up. At most one pass runs at a time; a call that finds
// another pass in flight returns an empty summary without touching the
// network. A pass that finds the network down does the same.
func (e *Engine) SyncQueue(ctx context.Context) (models.SyncSummary, error) {
	summary := models.SyncSummary{Results: []models.SyncResult{}}

	if !e.inFlight.CompareAndSwap(false, true) {
		e.log.Debug(ctx, "sync pass already in flight, skipping")
		return summary, nil
	}
	defer e.inFlight.Store(false)

	if !e.monitor.CheckNow(ctx) {
		e.log.Debug(ctx, "offline, skipping sync pass")
		return summary, nil
	}

	snapshot, err := e.queue.MarkPendingSyncing(ctx)
	if err != nil {
		return summary, err
	}
	if len(snapshot) == 0 {
		return summary, nil
	}

	e.log.Info(ctx, "starting sync pass", "pending", len(snapshot))

	results := make([]models.SyncResult, len(snapshot))
	for start := 0; start < len(snapshot); start += e.concurrency {
		end := start + e.concurrency
		if end > len(snapshot) {
			end = len(snapshot)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = e.syncOne(gctx, snapshot[i])
				return nil
			})
		}
		// Workers report through results, never through the group error,
		// so one bad item cannot abort the rest of the batch.
		g.Wait()
	}

	for _, r := range results {
		summary.Total++
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Results = results

	e.log.Info(ctx, "sync pass finished",
		"total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

// syncOne replays a single queued scan: resolve the barcode, commit the
// diary entry, and apply the outcome to the queue.
func (e *Engine) syncOne(ctx context.Context, scan models.QueuedScan) models.SyncResult {
	result := models.SyncResult{ID: scan.ID, Barcode: scan.Barcode}

	p, err := e.svc.Lookup(ctx, scan.Barcode)
	if err != nil {
		return e.fail(ctx, scan, result, err)
	}

	entry := models.DiaryEntry{
		UserID:    e.userID,
		Date:      scan.Date,
		Meal:      scan.Meal,
		Servings:  scan.Servings,
		QuantityG: scan.Servings * p.ServingSizeG,
		Product:   *p,
	}
	if err := e.svc.Commit(ctx, entry); err != nil {
		return e.fail(ctx, scan, result, err)
	}

	result.Success = true
	result.ProductName = p.Name
	if err := e.queue.Complete(ctx, scan.ID, queue.OutcomeSucceeded, ""); err != nil {
		e.log.Error(ctx, "applying sync success", "id", scan.ID, "error", err)
	}
	e.log.Debug(ctx, "queued scan synced", "barcode", scan.Barcode, "product", p.Name)
	return result
}

func (e *Engine) fail(ctx context.Context, scan models.QueuedScan, result models.SyncResult, err error) models.SyncResult {
	outcome := queue.OutcomeFailed
	msg := err.Error()
	switch {
	case lookup.IsNotFound(err):
		msg = "product not found"
	case lookup.IsTransient(err):
		// Stays eligible for the next pass instead of surfacing as failed.
		outcome = queue.OutcomeRetry
	}

	result.ErrorMessage = msg
	if cerr := e.queue.Complete(ctx, scan.ID, outcome, msg); cerr != nil {
		e.log.Error(ctx, "applying sync failure", "id", scan.ID, "error", cerr)
	}
	e.log.Warn(ctx, "queued scan not synced", "barcode", scan.Barcode, "transient", outcome == queue.OutcomeRetry, "error", msg)
	return result
}
