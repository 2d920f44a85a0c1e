package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"classifieds/internal/config"
	"classifieds/internal/database/migration"
	dbpostgres "classifieds/internal/database/postgres"
	"classifieds/internal/delivery/http/handler"
	"classifieds/internal/domain/user"
	"classifieds/internal/infrastructure/cache"
	"classifieds/internal/infrastructure/persistence/mongodb"
	"classifieds/internal/infrastructure/persistence/postgres"
	"classifieds/internal/notify"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/repository"
	"classifieds/internal/repository/memory"
	postinguc "classifieds/internal/usecase/posting"
	useruc "classifieds/internal/usecase/user"
	"classifieds/internal/validation"
	"classifieds/internal/ws"
)

type stores struct {
	postings repository.PostingRepository
	apps     repository.ApplicationRepository
	users    user.Repository
}

// Container owns every long-lived dependency of the server and closes them in reverse
// order of creation.
type Container struct {
	Config   config.Config
	Logger   *log.Logger
	Cache    *cache.Redis
	Hub      *ws.Hub
	Notifier *notify.Notifier
	JWT      jwt.Service
	Postings *postinguc.Service
	Users    *useruc.Service
	Checks   map[string]handler.Check

	closers []func() error
}

func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger, Checks: map[string]handler.Check{}}

	st, err := c.openStore(ctx)
	if err != nil {
		_ = c.closeAll()
		return nil, err
	}

	rules, err := validation.Load(cfg.Validation.RulesPath)
	if err != nil {
		_ = c.closeAll()
		return nil, fmt.Errorf("load validation rules: %w", err)
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger)
	c.closers = append(c.closers, c.Cache.Close)
	if c.Cache.Available() {
		c.Checks["redis"] = c.Cache.Ping
	}

	c.Hub = ws.NewHub(logger)
	c.Notifier = notify.NewNotifier(notify.Multi{
		notify.LogDispatcher{Logger: logger},
		notify.HubDispatcher{Hub: c.Hub},
	}, cfg.Notify.Timeout, logger)

	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)
	c.Postings = postinguc.NewService(postinguc.Deps{
		Postings:     st.postings,
		Applications: st.apps,
		Users:        st.users,
		Validator:    validation.New(rules),
		Cache:        c.Cache,
		Notifier:     c.Notifier,
		Logger:       logger,
		ListCacheTTL: cfg.Redis.TTL,
	})
	c.Users = useruc.NewService(st.users, logger)

	logger.Printf("[App] container ready | store=%s cache=%t", cfg.Store.Driver, c.Cache.Available())
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (stores, error) {
	cfg := c.Config
	switch cfg.Store.Driver {
	case config.StoreMemory:
		s := memory.NewStore()
		return stores{postings: s, apps: s.Applications(), users: s.Users()}, nil

	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.Store.MongoURI, 10*time.Second)
		if err != nil {
			return stores{}, err
		}
		c.closers = append(c.closers, func() error { return mongodb.Disconnect(client) })
		c.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		db := client.Database(cfg.Store.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return stores{}, err
		}
		s := mongodb.NewStore(db)
		return stores{postings: s, apps: s.Applications(), users: s.Users()}, nil

	case config.StorePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(connectCtx, cfg.Database)
		if err != nil {
			return stores{}, err
		}
		c.closers = append(c.closers, db.Close)
		c.Checks["postgres"] = db.Ping

		runner := migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: c.Logger}
		if err := runner.Run(ctx, db.SQLDB()); err != nil {
			return stores{}, fmt.Errorf("run migrations: %w", err)
		}

		users, err := postgres.NewUserRepository(ctx, db.SQLDB())
		if err != nil {
			return stores{}, err
		}
		c.closers = append(c.closers, users.Close)
		return stores{
			postings: repository.NewPostgresPostingRepository(db),
			apps:     repository.NewPostgresApplicationRepository(db),
			users:    users,
		}, nil

	default:
		return stores{}, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Close drains pending notifications, then releases connections.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.Notifier.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("notifier: %w", err))
	}
	if err := c.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) closeAll() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
