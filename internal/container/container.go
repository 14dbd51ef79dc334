package container

import (
	"context"
	"fmt"

	"gorepness/adapters/excel"
	"gorepness/adapters/memory"
	"gorepness/adapters/parquet"
	"gorepness/adapters/postgres"
	"gorepness/app"
	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/internal/api"
	"gorepness/internal/config"
	"gorepness/internal/migration"
	"gorepness/internal/testkit"
	"gorepness/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Data access
	VoteStore  ports.VoteStore
	Statements ports.StatementRepository

	// Services
	Analysis  *app.AnalysisService
	Manager   *app.RepresentativeStatementsManager
	VoteLayer *app.VoteLayerService
	Events    *api.SSEHub

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		logger: internal.DefaultLogger.Component("Container"),
	}, nil
}

// Open builds the configured vote store, opens it and wires the services
func (c *Container) Open(ctx context.Context) error {
	if err := c.initStores(ctx); err != nil {
		return err
	}

	if err := c.VoteStore.Open(ctx); err != nil {
		c.closeDB()
		return err
	}

	c.Analysis = app.NewAnalysisService(c.VoteStore, c.Statements, c.Config.Analysis.AggregationConcurrency)
	c.Manager = app.NewRepresentativeStatementsManager(c.Analysis)
	c.VoteLayer = app.NewVoteLayerService(c.VoteStore)

	c.logger.Info("container ready with %s vote store", c.Config.Store.Source)
	return nil
}

func (c *Container) initStores(ctx context.Context) error {
	store := c.Config.Store

	switch store.Source {
	case config.SourcePostgres:
		db, err := OpenDatabase(ctx, store.DatabaseURL)
		if err != nil {
			return err
		}
		c.DB = db
		c.VoteStore = postgres.NewVoteStoreWithDB(db)
		c.Statements = postgres.NewStatementRepository(db)
		return nil

	case config.SourceParquet:
		c.VoteStore = parquet.NewVoteStore(store.VotesFile)

	case config.SourceCSV:
		reader := excel.NewDataReader(store.VotesFile)
		c.VoteStore = memory.NewLoadingVoteStore("csv", func(ctx context.Context) ([]votes.Record, error) {
			return reader.ReadVotes()
		})

	case config.SourceSynthetic:
		kit := testkit.NewTestKit(testkit.DefaultConversationConfig())
		c.VoteStore = kit.VoteStore()
		c.Statements = kit.StatementRepository()
		return nil

	default:
		return fmt.Errorf("unknown vote source %q", store.Source)
	}

	statements, err := loadStatementsFile(store.StatementsFile)
	if err != nil {
		return err
	}
	c.Statements = statements
	return nil
}

// loadStatementsFile reads a comments export; no file yields an empty catalog
func loadStatementsFile(path string) (ports.StatementRepository, error) {
	if path == "" {
		return memory.NewStatementRepository(), nil
	}
	statements, err := excel.NewDataReader(path).ReadStatements()
	if err != nil {
		return nil, fmt.Errorf("failed to read statements from %s: %w", path, err)
	}
	return memory.NewStatementRepository(statements...), nil
}

// OpenDatabase connects to postgres and applies the schema
func OpenDatabase(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, core.NewStoreUnavailableError("postgres", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Server assembles the HTTP API over the wired services, including the
// analysis event stream
func (c *Container) Server() *api.Server {
	if c.Events == nil {
		c.Events = api.NewSSEHub()
		c.Manager.AddListener(c.Events)
	}
	return api.NewServer(
		api.NewAnalysisHandler(c.Analysis, c.Manager, c.Config.Analysis.Options),
		api.NewStatementHandler(c.Analysis, c.VoteLayer),
		c.Events,
	)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown() error {
	var firstErr error
	if c.Events != nil {
		c.Events.Close()
		c.Events = nil
	}
	if c.VoteStore != nil {
		if err := c.VoteStore.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.closeDB(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.logger.Info("container shutdown complete")
	return firstErr
}

func (c *Container) closeDB() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}
