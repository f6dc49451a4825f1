package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/broker"
	"github.com/frahmantamala/fintrack/internal/core/events"
	"github.com/frahmantamala/fintrack/internal/creditcard"
	creditcardRepo "github.com/frahmantamala/fintrack/internal/creditcard/postgres"
	"github.com/frahmantamala/fintrack/internal/recurring"
	recurringRepo "github.com/frahmantamala/fintrack/internal/recurring/postgres"
	"github.com/frahmantamala/fintrack/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// app holds the connections and services every long running command needs.
type app struct {
	cfg      *internal.Config
	logger   *slog.Logger
	location *time.Location
	db       *sqlx.DB
	gorm     *gorm.DB
	bus      *events.EventBus
	broker   *broker.Client

	cards     *creditcard.Service
	recurring *recurring.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   lg,
		location: cfg.Recurring.Location(),
		db:       db,
		gorm:     gdb,
		bus:      events.NewEventBus(lg),
	}

	if cfg.Broker.Enabled {
		a.connectBroker(ctx)
	}

	a.cards = creditcard.NewService(creditcardRepo.NewCreditCardRepository(gdb), a.bus, lg)

	rules := recurringRepo.NewRepository(gdb)
	evaluator := recurring.NewEvaluator(rules, rules, lg)
	materializer := recurring.NewMaterializer(evaluator, rules, a.cards, a.bus, lg)
	a.recurring = recurring.NewService(rules, evaluator, materializer, a.location, recurring.PoolConfig{
		MaxWorkers: cfg.Recurring.MaxWorkers,
		QueueSize:  cfg.Recurring.JobQueueSize,
	}, lg)

	return a, nil
}

// connectBroker forwards materialized obligations to RabbitMQ. A broker that
// cannot be reached is logged and the app runs without it.
func (a *app) connectBroker(ctx context.Context) {
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := broker.Dial(dialCtx, a.cfg.Broker, a.logger)
	if err != nil {
		a.logger.Warn("broker unavailable, events stay in process", "error", err)
		return
	}
	a.broker = client

	forwarder := broker.NewForwarder(client, a.logger,
		events.EventTypeObligationMaterialized,
		events.EventTypeCardBalanceRecomputed,
	)
	a.bus.Subscribe(events.AllEvents, forwarder.Handle)
	a.logger.Info("broker connected", "exchange", a.cfg.Broker.Exchange, "queue", a.cfg.Broker.Queue)
}

func (a *app) close() {
	a.bus.Wait()
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error("broker close error", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}

// initDB opens the pgx backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// initGorm reuses the sqlx pool so both layers see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}
