package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	billingledger "practicedesk/contexts/finance-core/billing-ledger"
	billingmemory "practicedesk/contexts/finance-core/billing-ledger/adapters/memory"
	billingpostgres "practicedesk/contexts/finance-core/billing-ledger/adapters/postgres"
	billingports "practicedesk/contexts/finance-core/billing-ledger/ports"
	roleauthority "practicedesk/contexts/identity-access/role-authority"
	engagementservice "practicedesk/contexts/practice-ops/engagement-service"
	engagementmemory "practicedesk/contexts/practice-ops/engagement-service/adapters/memory"
	engagementpostgres "practicedesk/contexts/practice-ops/engagement-service/adapters/postgres"
	engagementerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/adapters/storage"
	engagementports "practicedesk/contexts/practice-ops/engagement-service/ports"
	syncservice "practicedesk/contexts/realtime/sync-service"
	contractsv1 "practicedesk/contracts/gen/events/v1"
	"practicedesk/internal/platform/config"
	"practicedesk/internal/platform/db"
	"practicedesk/internal/platform/httpserver"
	"practicedesk/internal/platform/messaging"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type changeFeed interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, contractsv1.Envelope) error) error
	// OnGap is picked up by the realtime consumer, which resyncs sessions
	// after lost notifications.
	OnGap(fn func(topic string))
}

type APIApp struct {
	server       *httpserver.Server
	realtime     syncservice.Module
	engagement   engagementservice.Module
	billing      billingledger.Module
	listener     *messaging.PGNotify
	postgres     *db.Postgres
	sweepEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	notifier     *messaging.PGNotify
	billing      billingledger.Module
	sweepEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewAPI(ctx, cfg)
}

// NewAPI wires the API process from an already loaded configuration.
func NewAPI(ctx context.Context, cfg config.Config) (*APIApp, error) {
	logger := cfg.Logger("api")
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	identity, err := roleauthority.NewHMACModule(cfg.JWTSecret, cfg.JWTIssuer, logger)
	if err != nil {
		return nil, err
	}

	app := &APIApp{
		sweepEnabled: cfg.EnableInvoiceOverdueSweep && cfg.StoreDriver == config.StoreMemory,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}

	var feed changeFeed
	if cfg.ChangeFeed == config.FeedPostgres {
		listener, err := messaging.NewPGNotify(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		app.listener = listener
		feed = listener
	} else {
		feed = messaging.NewBus(logger)
	}

	files, err := storage.NewLocal(cfg.StorageRoot, cfg.StoragePublicBaseURL, cfg.StorageSigningKey)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("open document storage: %w", err)
	}

	engagementDeps := engagementservice.Dependencies{
		Storage:       files,
		Policy:        identity.Policy,
		Publisher:     feed,
		Clock:         engagementpostgres.SystemClock{},
		IDGenerator:   engagementpostgres.UUIDGenerator{},
		Location:      location,
		SignedLinkTTL: cfg.SignedLinkTTL,
		Logger:        logger,
	}
	billingDeps := billingledger.Dependencies{
		Policy:      identity.Policy,
		Publisher:   feed,
		Clock:       billingpostgres.SystemClock{},
		IDGenerator: billingpostgres.UUIDGenerator{},
		Location:    location,
		Logger:      logger,
	}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pg, err := connectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			app.closeResources()
			return nil, err
		}
		app.postgres = pg
		engagementRepo := engagementpostgres.NewRepository(pg.DB, logger)
		billingRepo := billingpostgres.NewRepository(pg.DB, logger)
		engagementDeps.Tasks = engagementRepo
		engagementDeps.Documents = engagementRepo
		engagementDeps.Clients = engagementRepo
		engagementDeps.Employees = engagementRepo
		billingDeps.Invoices = billingRepo
		billingDeps.Payments = billingRepo
		billingDeps.Clients = clientDirectory{clients: engagementRepo}
	default:
		engagementStore := engagementmemory.NewStore(engagementmemory.Seed{})
		billingStore := billingmemory.NewStore(nil, nil)
		engagementDeps.Tasks = engagementStore
		engagementDeps.Documents = engagementStore
		engagementDeps.Clients = engagementStore
		engagementDeps.Employees = engagementStore
		billingDeps.Invoices = billingStore
		billingDeps.Payments = billingStore
		billingDeps.Clients = clientDirectory{clients: engagementStore}
	}

	app.engagement = engagementservice.NewModule(engagementDeps)
	app.billing = billingledger.NewModule(billingDeps)
	app.realtime = syncservice.NewModule(syncservice.Dependencies{
		Subscriber:    feed,
		SessionBuffer: cfg.RealtimeSessionBuffer,
		Logger:        logger,
	})
	app.server = httpserver.New(httpserver.Modules{
		Identity:   identity,
		Engagement: app.engagement,
		Billing:    app.billing,
		Realtime:   app.realtime,
		Files:      files,
	}, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWorker(ctx, cfg)
}

// NewWorker wires the background process. Its jobs read the shared database,
// so it needs the postgres store.
func NewWorker(ctx context.Context, cfg config.Config) (*WorkerApp, error) {
	logger := cfg.Logger("worker")
	if cfg.StoreDriver != config.StorePostgres {
		return nil, fmt.Errorf("worker requires STORE_DRIVER=%s", config.StorePostgres)
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	pg, err := connectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	worker := &WorkerApp{
		postgres:     pg,
		sweepEnabled: cfg.EnableInvoiceOverdueSweep,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}

	var publisher billingports.EventPublisher
	if cfg.ChangeFeed == config.FeedPostgres {
		notifier, err := messaging.NewPGNotify(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		worker.notifier = notifier
		publisher = notifier
	} else {
		logger.Warn("worker changes are not broadcast without CHANGE_FEED=postgres",
			"event", "bootstrap_worker_feed_local",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	engagementRepo := engagementpostgres.NewRepository(pg.DB, logger)
	billingRepo := billingpostgres.NewRepository(pg.DB, logger)
	worker.billing = billingledger.NewModule(billingledger.Dependencies{
		Invoices:    billingRepo,
		Payments:    billingRepo,
		Clients:     clientDirectory{clients: engagementRepo},
		Publisher:   publisher,
		Clock:       billingpostgres.SystemClock{},
		IDGenerator: billingpostgres.UUIDGenerator{},
		Location:    location,
		Logger:      logger,
	})
	return worker, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"invoice_sweep", a.sweepEnabled,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if err := a.realtime.Consumer.Start(groupCtx); err != nil {
		return err
	}
	if a.listener != nil {
		group.Go(func() error { return a.listener.Listen(groupCtx) })
	}
	if a.sweepEnabled {
		group.Go(func() error {
			return runEvery(groupCtx, a.pollInterval, func(ctx context.Context) error {
				_, err := a.billing.OverdueSweeper.RunOnce(ctx)
				return err
			})
		})
	}
	group.Go(func() error { return a.server.Run(groupCtx) })
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.closeResources()
}

func (a *APIApp) closeResources() error {
	if a.listener != nil {
		a.listener.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"invoice_sweep", w.sweepEnabled,
	)
	if !w.sweepEnabled {
		<-ctx.Done()
		return nil
	}
	return runEvery(ctx, w.pollInterval, func(ctx context.Context) error {
		_, err := w.billing.OverdueSweeper.RunOnce(ctx)
		return err
	})
}

func (w *WorkerApp) Close() error {
	if w.notifier != nil {
		w.notifier.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// runEvery runs job immediately and then on every tick until ctx ends.
func runEvery(ctx context.Context, interval time.Duration, job func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := job(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func connectPostgres(ctx context.Context, dsn string) (*db.Postgres, error) {
	pg, err := db.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}

// clientDirectory lets billing resolve clients kept by the engagement records.
type clientDirectory struct {
	clients engagementports.ClientRepository
}

func (d clientDirectory) ClientExists(ctx context.Context, clientID string) (bool, error) {
	if _, err := d.clients.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, engagementerrors.ErrClientNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d clientDirectory) ClientName(ctx context.Context, clientID string) (string, error) {
	client, err := d.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, engagementerrors.ErrClientNotFound) {
			return "", nil
		}
		return "", err
	}
	return client.Name, nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
