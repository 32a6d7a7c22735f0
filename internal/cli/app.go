package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/dmitrijs2005/scansync/internal/logging"
	"github.com/dmitrijs2005/scansync/internal/netx"
	"github.com/dmitrijs2005/scansync/internal/scanner/cache"
	"github.com/dmitrijs2005/scansync/internal/scanner/config"
	"github.com/dmitrijs2005/scansync/internal/scanner/history"
	"github.com/dmitrijs2005/scansync/internal/scanner/lookup"
	"github.com/dmitrijs2005/scansync/internal/scanner/netmon"
	"github.com/dmitrijs2005/scansync/internal/scanner/queue"
	"github.com/dmitrijs2005/scansync/internal/scanner/session"
	"github.com/dmitrijs2005/scansync/internal/scanner/store"
	"github.com/dmitrijs2005/scansync/internal/scanner/syncer"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// App owns the scan pipeline behind the REPL: the durable queue and
// history, the result cache, the connectivity monitor, and the sync engine.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *store.BoltDB
	queue   *queue.Queue
	cache   *cache.Cache
	history *history.History
	monitor *netmon.Monitor
	engine  *syncer.Engine
	svc     lookup.Service
	reader  *bufio.Reader

	// sess is the current scan dialog, nil between dialogs.
	sess *session.Session
}

// NewApp opens the embedded database and wires the pipeline. Call Close
// when done.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := store.OpenBolt(filepath.Join(c.DataDir, "scansync.db"))
	if err != nil {
		return nil, err
	}

	q := queue.New(db.Store(queue.StorageKey), queue.Config{
		MaxSize:         c.QueueMaxSize,
		FailedRetention: c.FailedRetention,
	})
	h := history.New(db.Store(history.StorageKey), history.DefaultMaxItems)
	rc := cache.New(c.CacheFreshFor, c.CacheGCAfter)

	probe := func(ctx context.Context) bool {
		return netx.Reachable(ctx, http.DefaultClient, c.ServiceBaseURL+"/api/health")
	}
	monitor := netmon.New(probe, c.ForceOffline)

	svc := lookup.NewClient(c.ServiceBaseURL, c.LookupTimeout)
	engine := syncer.New(q, svc, monitor, log, c.UserID, c.SyncConcurrency)

	return &App{
		config:  c,
		log:     log,
		db:      db,
		queue:   q,
		cache:   rc,
		history: h,
		monitor: monitor,
		engine:  engine,
		svc:     svc,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run loads durable state, starts the connectivity watcher and the
// auto-sync trigger, and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	if err := a.queue.Load(ctx); err != nil {
		return err
	}
	if err := a.history.Load(ctx); err != nil {
		return err
	}

	a.engine.AutoSync(ctx)
	a.monitor.CheckNow(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.monitor.Watch(watchCtx, a.config.OnlineCheckInterval)

	if isTerminal(int(os.Stdin.Fd())) {
		printlnFn("scansync CLI (type 'help' for commands)")
	}
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// status is the prompt decoration: connectivity plus queue counters.
func (a *App) status() string {
	mode := "offline"
	if a.monitor.IsOnline() {
		mode = "online"
	}
	s := fmt.Sprintf("(%s", mode)
	if n := a.queue.PendingCount(); n > 0 {
		s += fmt.Sprintf(", %d pending", n)
	}
	if n := a.queue.FailedCount(); n > 0 {
		s += fmt.Sprintf(", %d failed", n)
	}
	return s + ")"
}

// newSession opens a fresh scan dialog against the shared pipeline.
func (a *App) newSession(ctx context.Context) (*session.Session, error) {
	s := session.New(session.Deps{
		Cache:          a.cache,
		Queue:          a.queue,
		Monitor:        a.monitor,
		Service:        a.svc,
		History:        a.history,
		Camera:         session.GrantedCamera{},
		Log:            a.log,
		UserID:         a.config.UserID,
		DebounceWindow: a.config.DebounceWindow,
	})
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
