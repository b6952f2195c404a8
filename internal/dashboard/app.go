package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bizpilot/internal/cache"
	"bizpilot/internal/core"
	"bizpilot/internal/log"
	"bizpilot/internal/reports"
	"bizpilot/internal/store"
)

// API is the slice of the backend client the dashboard consumes.
type API interface {
	Ping(ctx context.Context) bool
	List(ctx context.Context, resource string) ([]store.Document, error)
	Create(ctx context.Context, resource string, fields map[string]any) (string, error)
	Update(ctx context.Context, resource, id string, fields map[string]any) error
	Delete(ctx context.Context, resource, id string) error
}

// State is the explicit application state rendered by the dashboard. It is
// replaced wholesale on every refresh; render functions only ever see a
// snapshot, never shared mutable data.
type State struct {
	Connected    bool
	Tasks        []store.Document
	Clients      []store.Document
	Transactions []store.Document
	Summary      reports.Summary
	Stats        reports.Stats
	LastUpdated  time.Time
}

// App owns the dashboard state and the update-then-render cycle: every
// mutation goes through the API and triggers a full refetch.
type App struct {
	api    API
	logger *log.Logger
	cache  *cache.TTL[[]store.Document]
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

func NewApp(api API, cacheTTL time.Duration, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &App{
		api:    api,
		logger: logger.WithComponent(log.ComponentDashboard),
		cache:  cache.NewTTL[[]store.Document](cacheTTL),
		now:    time.Now,
	}
}

// State returns a snapshot of the current application state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Refresh probes the backend and, when connected, refetches all three
// collections concurrently. Fetch failures and disconnection degrade to the
// last-known-good lists, or empty ones; Refresh itself never fails.
func (a *App) Refresh(ctx context.Context) {
	connected := a.api.Ping(ctx)

	var tasks, clients, transactions []store.Document
	if connected {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { tasks = a.fetch(gctx, core.CollectionTasks); return nil })
		g.Go(func() error { clients = a.fetch(gctx, core.CollectionClients); return nil })
		g.Go(func() error { transactions = a.fetch(gctx, core.CollectionTransactions); return nil })
		_ = g.Wait()
	} else {
		tasks = a.cached(core.CollectionTasks)
		clients = a.cached(core.CollectionClients)
		transactions = a.cached(core.CollectionTransactions)
	}

	next := State{
		Connected:    connected,
		Tasks:        tasks,
		Clients:      clients,
		Transactions: transactions,
		Summary:      reports.Summarize(transactions),
		Stats:        reports.ComputeStats(tasks, clients),
		LastUpdated:  a.now(),
	}

	a.mu.Lock()
	changed := a.state.Connected != connected
	a.state = next
	a.mu.Unlock()

	if changed {
		a.logger.InfoContext(ctx, "Backend connectivity changed", log.FieldConnected, connected)
	}
}

// Probe updates only the connectivity flag; the 30s poll drives this so a
// dead backend is noticed without refetching collections.
func (a *App) Probe(ctx context.Context) {
	connected := a.api.Ping(ctx)

	a.mu.Lock()
	changed := a.state.Connected != connected
	a.state.Connected = connected
	a.mu.Unlock()

	if changed {
		a.logger.InfoContext(ctx, "Backend connectivity changed", log.FieldConnected, connected)
	}
}

func (a *App) fetch(ctx context.Context, resource string) []store.Document {
	docs, err := a.api.List(ctx, resource)
	if err != nil {
		a.logger.ErrorContext(ctx, "Collection fetch failed",
			log.FieldResource, resource,
			log.FieldError, err)
		return a.cached(resource)
	}
	a.cache.Set(resource, docs)
	return docs
}

func (a *App) cached(resource string) []store.Document {
	if docs, ok := a.cache.Get(resource); ok {
		return docs
	}
	return []store.Document{}
}

// CreateTask, CompleteTask and the other mutation helpers fire the API call
// and then refetch everything. Failures are logged and swallowed; the next
// render simply shows the unchanged lists.

func (a *App) CreateTask(ctx context.Context, fields map[string]any) {
	a.mutate(ctx, log.OpCreate, core.CollectionTasks, func() error {
		_, err := a.api.Create(ctx, core.CollectionTasks, fields)
		return err
	})
}

func (a *App) CompleteTask(ctx context.Context, id string) {
	a.mutate(ctx, log.OpUpdate, core.CollectionTasks, func() error {
		return a.api.Update(ctx, core.CollectionTasks, id, map[string]any{"status": core.StatusCompleted})
	})
}

func (a *App) DeleteTask(ctx context.Context, id string) {
	a.mutate(ctx, log.OpDelete, core.CollectionTasks, func() error {
		return a.api.Delete(ctx, core.CollectionTasks, id)
	})
}

func (a *App) CreateClient(ctx context.Context, fields map[string]any) {
	a.mutate(ctx, log.OpCreate, core.CollectionClients, func() error {
		_, err := a.api.Create(ctx, core.CollectionClients, fields)
		return err
	})
}

func (a *App) DeleteClient(ctx context.Context, id string) {
	a.mutate(ctx, log.OpDelete, core.CollectionClients, func() error {
		return a.api.Delete(ctx, core.CollectionClients, id)
	})
}

func (a *App) CreateTransaction(ctx context.Context, fields map[string]any) {
	a.mutate(ctx, log.OpCreate, core.CollectionTransactions, func() error {
		_, err := a.api.Create(ctx, core.CollectionTransactions, fields)
		return err
	})
}

func (a *App) DeleteTransaction(ctx context.Context, id string) {
	a.mutate(ctx, log.OpDelete, core.CollectionTransactions, func() error {
		return a.api.Delete(ctx, core.CollectionTransactions, id)
	})
}

func (a *App) mutate(ctx context.Context, op, resource string, fn func() error) {
	if err := fn(); err != nil {
		a.logger.ErrorContext(ctx, "Mutation failed",
			log.FieldOperation, op,
			log.FieldResource, resource,
			log.FieldError, err)
	}
	a.Refresh(ctx)
}
