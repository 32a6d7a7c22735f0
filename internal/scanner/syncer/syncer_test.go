package syncer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/logging"
	"github.com/dmitrijs2005/scansync/internal/scanner/lookup"
	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/dmitrijs2005/scansync/internal/scanner/netmon"
	"github.com/dmitrijs2005/scansync/internal/scanner/queue"
	"github.com/dmitrijs2005/scansync/internal/scanner/store"
)

type fakeService struct {
	mu        sync.Mutex
	entries   []models.DiaryEntry
	lookupFn  func(code string) (*models.Product, error)
	commitFn  func(entry models.DiaryEntry) error
	lookups   atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeService) Lookup(ctx context.Context, code string) (*models.Product, error) {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		max := f.maxActive.Load()
		if cur <= max || f.maxActive.CompareAndSwap(max, cur) {
			break
		}
	}
	f.lookups.Add(1)
	return f.lookupFn(code)
}

func (f *fakeService) Commit(ctx context.Context, entry models.DiaryEntry) error {
	if f.commitFn != nil {
		if err := f.commitFn(entry); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeService) committed() []models.DiaryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DiaryEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func onlineMonitor() *netmon.Monitor {
	return netmon.New(func(ctx context.Context) bool { return true }, false)
}

func newQueue(t *testing.T, codes ...string) *queue.Queue {
	t.Helper()
	q := queue.New(store.NewMemoryStore(), queue.Config{})
	for _, code := range codes {
		_, err := q.Enqueue(context.Background(), code, queue.Request{
			Date:     "2026-03-01",
			Meal:     models.MealLunch,
			Servings: 2,
		})
		require.NoError(t, err)
	}
	return q
}

func TestSyncQueue_AllSucceed(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074", "4006381333931")
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			return &models.Product{Barcode: code, Name: "Oats", ServingSizeG: 50}, nil
		},
	}

	e := New(q, svc, onlineMonitor(), discardLogger(), "u1", 0)
	summary, err := e.SyncQueue(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, summary.Total)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 0, q.Len(), "synced scans leave the queue")

	entries := svc.committed()
	require.Len(t, entries, 2)
	require.Equal(t, "u1", entries[0].UserID)
	require.Equal(t, "2026-03-01", entries[0].Date)
	require.InDelta(t, 100.0, entries[0].QuantityG, 1e-9, "quantity derives from servings and serving size")
}

func TestSyncQueue_MixedOutcomes(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074", "11111111", "22222222")
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			switch code {
			case "11111111":
				return nil, &lookup.Error{Kind: lookup.KindNotFound, Message: "no such product"}
			case "22222222":
				return nil, &lookup.Error{Kind: lookup.KindUnavailable, Message: "upstream down"}
			default:
				return &models.Product{Barcode: code, Name: "Oats", ServingSizeG: 50}, nil
			}
		},
	}

	e := New(q, svc, onlineMonitor(), discardLogger(), "u1", 0)
	summary, err := e.SyncQueue(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 2, summary.Failed, "transient misses count as failed for the pass")

	items := q.Items()
	require.Len(t, items, 2)
	byCode := map[string]models.QueuedScan{}
	for _, it := range items {
		byCode[it.Barcode] = it
	}
	require.Equal(t, models.StatusFailed, byCode["11111111"].Status)
	require.Equal(t, "product not found", byCode["11111111"].ErrorMessage)
	require.Equal(t, models.StatusPending, byCode["22222222"].Status, "transient failures stay eligible")
	require.Empty(t, byCode["22222222"].ErrorMessage)
}

func TestSyncQueue_CommitFailureClassified(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074")
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			return &models.Product{Barcode: code, Name: "Oats", ServingSizeG: 50}, nil
		},
		commitFn: func(entry models.DiaryEntry) error {
			return &lookup.Error{Kind: lookup.KindUpstream, Message: "servings must be positive"}
		},
	}

	e := New(q, svc, onlineMonitor(), discardLogger(), "u1", 0)
	summary, err := e.SyncQueue(ctx)
	require.NoError(t, err)

	require.Equal(t, 1, summary.Failed)
	items := q.Items()
	require.Len(t, items, 1)
	require.Equal(t, models.StatusFailed, items[0].Status)
	require.Contains(t, items[0].ErrorMessage, "servings must be positive")
}

func TestSyncQueue_OfflineSkips(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074")
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			return &models.Product{Barcode: code}, nil
		},
	}
	offline := netmon.New(func(ctx context.Context) bool { return false }, false)

	e := New(q, svc, offline, discardLogger(), "u1", 0)
	summary, err := e.SyncQueue(ctx)
	require.NoError(t, err)

	require.Equal(t, 0, summary.Total)
	require.EqualValues(t, 0, svc.lookups.Load(), "no network traffic while offline")
	require.Equal(t, 1, q.PendingCount())
}

func TestSyncQueue_SingleFlight(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074")
	release := make(chan struct{})
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			<-release
			return &models.Product{Barcode: code, ServingSizeG: 50}, nil
		},
	}

	e := New(q, svc, onlineMonitor(), discardLogger(), "u1", 0)

	done := make(chan models.SyncSummary, 1)
	go func() {
		s, _ := e.SyncQueue(ctx)
		done <- s
	}()

	require.Eventually(t, func() bool { return svc.active.Load() > 0 }, time.Second, time.Millisecond)

	second, err := e.SyncQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, second.Total, "concurrent pass yields an empty summary")

	close(release)
	first := <-done
	require.Equal(t, 1, first.Succeeded)
}

func TestSyncQueue_ConcurrencyBound(t *testing.T) {
	ctx := context.Background()
	codes := make([]string, 8)
	for i := range codes {
		codes[i] = "96385074"
	}
	q := newQueue(t, codes...)
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			time.Sleep(10 * time.Millisecond)
			return &models.Product{Barcode: code, ServingSizeG: 50}, nil
		},
	}

	e := New(q, svc, onlineMonitor(), discardLogger(), "u1", 3)
	summary, err := e.SyncQueue(ctx)
	require.NoError(t, err)

	require.Equal(t, 8, summary.Succeeded)
	require.LessOrEqual(t, svc.maxActive.Load(), int32(3))
}

func TestAutoSync_TriggersOnReconnect(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t, "96385074")
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			return &models.Product{Barcode: code, Name: "Oats", ServingSizeG: 50}, nil
		},
	}

	var online atomic.Bool
	m := netmon.New(func(ctx context.Context) bool { return online.Load() }, false)

	e := New(q, svc, m, discardLogger(), "u1", 0)
	e.AutoSync(ctx)

	online.Store(true)
	m.CheckNow(ctx)

	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.Len(t, svc.committed(), 1)
}

func TestAutoSync_NoPendingNoPass(t *testing.T) {
	ctx := context.Background()
	q := queue.New(store.NewMemoryStore(), queue.Config{})
	svc := &fakeService{
		lookupFn: func(code string) (*models.Product, error) {
			return &models.Product{Barcode: code}, nil
		},
	}

	var online atomic.Bool
	m := netmon.New(func(ctx context.Context) bool { return online.Load() }, false)

	e := New(q, svc, m, discardLogger(), "u1", 0)
	e.AutoSync(ctx)

	online.Store(true)
	m.CheckNow(ctx)

	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 0, svc.lookups.Load())
}
