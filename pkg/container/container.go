package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	infracache "library-backend/internal/infrastructure/cache"
	infradb "library-backend/internal/infrastructure/database"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"

	bookhandler "library-backend/internal/domains/book/handler"
	bookrepo "library-backend/internal/domains/book/repository"
	bookservice "library-backend/internal/domains/book/service"
	lendinghandler "library-backend/internal/domains/lending/handler"
	lendingrepo "library-backend/internal/domains/lending/repository"
	lendingservice "library-backend/internal/domains/lending/service"
	memberhandler "library-backend/internal/domains/member/handler"
	memberrepo "library-backend/internal/domains/member/repository"
	memberservice "library-backend/internal/domains/member/service"
)

// Container is the root of the dependency graph. Initialization order is
// config → infrastructure → repositories → services → handlers.
type Container struct {
	// Infrastructure
	Config *config.Config
	DB     *infradb.PostgresDB
	Cache  cache.Cache
	Runner database.TxRunner

	// Repositories
	BookRepo   bookrepo.Repository
	MemberRepo memberrepo.Repository
	Ledger     lendingrepo.Ledger

	// Services
	BookService    bookservice.Service
	MemberService  memberservice.Service
	LendingService lendingservice.Service

	// Handlers
	BookHandler    *bookhandler.BookHandler
	MemberHandler  *memberhandler.MemberHandler
	LendingHandler *lendinghandler.LendingHandler

	redis *infracache.RedisCache
}

// NewContainer builds and wires the whole application.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database
	c.DB = infradb.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	c.Runner = &database.PoolRunner{Pool: c.DB.Pool}

	// Redis is optional: a cache outage degrades to direct reads.
	redisCache := infracache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache")
	} else {
		c.Cache = redisCache
		c.redis = redisCache
	}

	// Repositories
	c.BookRepo = bookrepo.NewPostgresRepository(c.DB.Pool, c.Cache)
	c.MemberRepo = memberrepo.NewPostgresRepository(c.DB.Pool)
	c.Ledger = lendingrepo.NewPostgresLedger(c.DB.Pool)

	// Services
	c.BookService = bookservice.NewBookService(c.Runner, c.BookRepo, c.Ledger)
	c.MemberService = memberservice.NewMemberService(c.MemberRepo)
	c.LendingService = lendingservice.NewLendingService(c.Runner, c.BookRepo, c.MemberRepo, c.Ledger, cfg.Lending)

	// Handlers
	c.BookHandler = bookhandler.NewBookHandler(c.BookService)
	c.MemberHandler = memberhandler.NewMemberHandler(c.MemberService)
	c.LendingHandler = lendinghandler.NewLendingHandler(c.LendingService)

	log.Info().
		Str("environment", cfg.App.Environment).
		Int("borrowing_limit", cfg.Lending.BorrowingLimit).
		Int("loan_period_days", cfg.Lending.LoanPeriodDays).
		Msg("Container initialized")

	return c, nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
