// Package history keeps the bounded "recently resolved" list: the last few
// products the user committed, most recent first. Sessions prime the result
// cache from it so a repeat scan of a known product skips the network.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/scansync/internal/common"
	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/dmitrijs2005/scansync/internal/scanner/store"
)

// StorageKey is the fixed key the history document lives under.
const StorageKey = "recently-scanned"

const DefaultMaxItems = 10

// Item is one resolved product plus when it was last committed.
type Item struct {
	Product   models.Product `json:"product"`
	ScannedAt time.Time      `json:"scanned_at"`
}

// History is a durable, bounded, deduplicated list. Safe for concurrent use.
type History struct {
	mu    sync.Mutex
	items []Item
	store store.Store
	max   int
	now   func() time.Time
}

func New(s store.Store, max int) *History {
	if max <= 0 {
		max = DefaultMaxItems
	}
	return &History{store: s, max: max, now: time.Now}
}

// NewWithClock is New with an injected time source for tests.
func NewWithClock(s store.Store, max int, now func() time.Time) *History {
	h := New(s, max)
	h.now = now
	return h
}

// Load reads the durable document.
func (h *History) Load(ctx context.Context) error {
	data, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	var items []Item
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding history: %w", err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = items
	return nil
}

// Add records a committed product. A product already present (by barcode)
// moves to the front; the list is trimmed to its bound.
func (h *History) Add(ctx context.Context, p models.Product) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := make([]Item, 0, len(h.items)+1)
	kept = append(kept, Item{Product: p, ScannedAt: h.now()})
	for _, it := range h.items {
		if it.Product.Barcode != p.Barcode {
			kept = append(kept, it)
		}
	}
	if len(kept) > h.max {
		kept = kept[:h.max]
	}
	h.items = kept
	return h.persistLocked(ctx)
}

// Remove drops the entry for barcode.
func (h *History) Remove(ctx context.Context, barcode string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, it := range h.items {
		if it.Product.Barcode == barcode {
			h.items = append(h.items[:i], h.items[i+1:]...)
			return h.persistLocked(ctx)
		}
	}
	return fmt.Errorf("history entry %s: %w", barcode, common.ErrorNotFound)
}

// ClearAll empties the history.
func (h *History) ClearAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
	return h.persistLocked(ctx)
}

// Items returns a copy, most recent first.
func (h *History) Items() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Item, len(h.items))
	copy(out, h.items)
	return out
}

// Products returns just the products, for priming the result cache.
func (h *History) Products() []models.Product {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Product, 0, len(h.items))
	for _, it := range h.items {
		out = append(out, it.Product)
	}
	return out
}

func (h *History) persistLocked(ctx context.Context) error {
	items := h.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := h.store.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	return nil
}
