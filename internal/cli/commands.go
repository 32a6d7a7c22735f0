package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/scansync/internal/scanner/session"
)

// printfFn is a test seam for formatted user-facing output.
var printfFn = fmt.Printf

const dateLayout = "2006-01-02"

// ensureSession makes sure a dialog is open, starting a new one when the
// previous dialog finished.
func (a *App) ensureSession(ctx context.Context) error {
	if a.sess != nil {
		switch a.sess.State() {
		case session.StateCommitted, session.StateClosed:
		default:
			return nil
		}
	}
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	a.sess = s
	return nil
}

// defaultRequest is the diary context captures are taken with; confirm
// re-prompts before committing.
func (a *App) defaultRequest() session.Request {
	return session.Request{
		Date:     time.Now().Format(dateLayout),
		Meal:     "snack",
		Servings: 1,
	}
}

// Scan captures a barcode through the dialog's camera path.
func (a *App) Scan(ctx context.Context, code string) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	if err := a.sess.Scan(ctx, code, a.defaultRequest()); err != nil {
		return a.reportFailure(err)
	}
	a.report()
	return nil
}

// Enter captures a manually typed barcode.
func (a *App) Enter(ctx context.Context, code string) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	if err := a.sess.Enter(ctx, code, a.defaultRequest()); err != nil {
		return a.reportFailure(err)
	}
	a.report()
	return nil
}

// reportFailure narrates a capture failure that left the dialog in the
// error state, where 'retry' applies; anything else propagates.
func (a *App) reportFailure(err error) error {
	if a.sess.State() == session.StateError {
		printfFn("Lookup failed: %s. 'retry' to try again.\n", err.Error())
		return nil
	}
	return err
}

// report narrates the dialog's resolution state after a capture.
func (a *App) report() {
	switch a.sess.State() {
	case session.StateFound:
		p := a.sess.Product()
		printfFn("Found: %s (%.0f kcal per 100g, serving %.0fg). Type 'confirm' to log it.\n",
			p.Name, p.CaloriesPer100g, p.ServingSizeG)
	case session.StateNotFound:
		printfFn("No product found for %s. Try 'retry' with another code.\n", a.sess.Code())
	case session.StateQueued:
		q := a.sess.Queued()
		printfFn("Offline: scan queued for later sync (id %s). 'another' to keep scanning, 'done' to finish.\n", q.ID)
	}
}

// Confirm prompts for meal context and commits the found product.
func (a *App) Confirm(ctx context.Context) error {
	if a.sess == nil || a.sess.State() != session.StateFound {
		return fmt.Errorf("nothing to confirm, scan a code first")
	}

	meal, err := GetMeal(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	servings, err := GetServings(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	req := session.Request{
		Date:     time.Now().Format(dateLayout),
		Meal:     meal,
		Servings: servings,
	}
	if err := a.sess.Confirm(ctx, req); err != nil {
		return err
	}
	printfFn("Logged %s (%.1f servings, %s).\n", a.sess.Product().Name, servings, meal)
	a.sess = nil
	return nil
}

// Retry returns the dialog to scanning after found/not-found/error.
func (a *App) Retry(ctx context.Context) error {
	if a.sess == nil {
		return fmt.Errorf("no active scan")
	}
	if err := a.sess.Retry(); err != nil {
		return err
	}
	printlnFn("Scanning. Enter a code with 'scan <code>'.")
	return nil
}

// Another resumes scanning after an offline capture was queued.
func (a *App) Another(ctx context.Context) error {
	if a.sess == nil {
		return fmt.Errorf("no active scan")
	}
	if err := a.sess.ScanAnother(); err != nil {
		return err
	}
	printlnFn("Scanning. Enter a code with 'scan <code>'.")
	return nil
}

// Finish closes a queued dialog.
func (a *App) Finish(ctx context.Context) error {
	if a.sess == nil {
		return fmt.Errorf("no active scan")
	}
	if err := a.sess.Done(); err != nil {
		return err
	}
	a.sess = nil
	printlnFn("Dialog closed.")
	return nil
}

// ShowQueue lists the queued offline scans.
func (a *App) ShowQueue(ctx context.Context) error {
	items := a.queue.Items()
	if len(items) == 0 {
		printlnFn("Queue is empty.")
		return nil
	}
	for _, it := range items {
		line := fmt.Sprintf("%s  %s  %s  %s %s  queued %s",
			it.ID, it.Barcode, it.Status, it.Date, it.Meal, it.QueuedAt.Format(time.RFC3339))
		if it.ErrorMessage != "" {
			line += "  (" + it.ErrorMessage + ")"
		}
		printlnFn(line)
	}
	return nil
}

// Sync runs a sync pass now and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	summary, err := a.engine.SyncQueue(ctx)
	if err != nil {
		return err
	}
	if summary.Total == 0 {
		printlnFn("Nothing to sync.")
		return nil
	}
	printfFn("Synced %d of %d queued scans (%d failed).\n", summary.Succeeded, summary.Total, summary.Failed)
	for _, r := range summary.Results {
		if r.Success {
			printfFn("  %s -> %s\n", r.Barcode, r.ProductName)
		} else {
			printfFn("  %s failed: %s\n", r.Barcode, r.ErrorMessage)
		}
	}
	return nil
}

// Remove deletes one queued scan by id.
func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.queue.Remove(ctx, id); err != nil {
		return err
	}
	printlnFn("Removed.")
	return nil
}

// ClearFailed drops every failed queued scan.
func (a *App) ClearFailed(ctx context.Context) error {
	n := a.queue.FailedCount()
	if err := a.queue.ClearFailed(ctx); err != nil {
		return err
	}
	printfFn("Cleared %d failed scans.\n", n)
	return nil
}

// ClearAll empties the queue entirely, pending scans included.
func (a *App) ClearAll(ctx context.Context) error {
	n := a.queue.Len()
	if err := a.queue.ClearAll(ctx); err != nil {
		return err
	}
	printfFn("Cleared %d queued scans.\n", n)
	return nil
}

// Recent lists the recently resolved products.
func (a *App) Recent(ctx context.Context) error {
	items := a.history.Items()
	if len(items) == 0 {
		printlnFn("No recently resolved products.")
		return nil
	}
	for _, it := range items {
		printfFn("%s  %s  (%.0f kcal per 100g)\n", it.Product.Barcode, it.Product.Name, it.Product.CaloriesPer100g)
	}
	return nil
}

// Status prints connectivity and queue counters.
func (a *App) Status(ctx context.Context) error {
	mode := "offline"
	if a.monitor.IsOnline() {
		mode = "online"
	}
	printfFn("Network: %s\n", mode)
	printfFn("Queue: %d total, %d pending, %d failed\n", a.queue.Len(), a.queue.PendingCount(), a.queue.FailedCount())
	printfFn("Cache: %d entries\n", a.cache.Len())
	return nil
}
