// internal/app/console.go
package app

import (
	"context"
	"fmt"

	"admin-console/internal/config"
	"admin-console/internal/credstore"
	"admin-console/internal/db"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/session"
	"admin-console/internal/repository/postgres"
	"admin-console/internal/resource"
	"admin-console/internal/screens"
	authUsecase "admin-console/internal/service/auth"
	"admin-console/internal/transport"

	"go.uber.org/zap"
)

const redisKeyPrefix = "admin-console"

// Surface is where a console sends toasts, navigations and screen updates.
type Surface struct {
	Notifier  notify.Notifier
	Navigator notify.Navigator
	OnChange  func(kind string, state any)
}

// Console is the session, transport and screens shared by the server and the CLI.
type Console struct {
	Store    credstore.Store
	Gate     *session.Gate
	Client   *transport.Client
	Registry *screens.Registry
	Auth     *authUsecase.AuthService
	// Journal is nil unless DATABASE_URL is set.
	Journal *postgres.MutationJournal

	closers []func()
	logger  *zap.Logger
}

// NewConsole wires the console. surface is called once the gate exists so the
// surface can depend on it.
func NewConsole(ctx context.Context, cfg config.AppConfig, surface func(*session.Gate) Surface, logger *zap.Logger) (*Console, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Console{logger: logger}

	// ----- Credential store -----
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	// ----- Session gate -----
	c.Gate = session.NewGate(store, session.Options{TokenTTL: cfg.SessionTTL}, logger.Named("session"))
	s := surface(c.Gate)
	c.Gate.Attach(s.Notifier, s.Navigator)

	// ----- Transport -----
	client, err := transport.New(transport.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
		UserAgent: "admin-console",
	}, c.Gate, logger.Named("transport"))
	if err != nil {
		c.Close()
		return nil, err
	}
	client.OnUnauthorized(func(ctx context.Context, token string) {
		c.Gate.Invalidate(ctx, token)
	})
	c.Client = client

	// ----- Mutation journal -----
	var observer resource.MutationObserver
	if cfg.DatabaseURL != "" {
		journal, err := c.openJournal(ctx, cfg.DatabaseURL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Journal = journal
		observer = journal
	}

	// ----- Screens -----
	notifier := s.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	c.Registry = screens.NewRegistry(screens.Deps{
		Client:   client,
		Session:  c.Gate,
		Notifier: notifier,
		Observer: observer,
		Debounce: cfg.SearchDebounce,
		Logger:   logger.Named("screens"),
		OnChange: s.OnChange,
	})
	c.closers = append(c.closers, c.Registry.Close)

	c.Auth = authUsecase.NewAuthService(client, c.Gate, logger.Named("auth"))
	return c, nil
}

// Close releases the console's connections in reverse order of opening.
func (c *Console) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Console) openStore(ctx context.Context, cfg config.AppConfig) (credstore.Store, error) {
	switch cfg.CredBackend {
	case config.CredBackendMemory:
		return credstore.NewMemoryStore(), nil
	case config.CredBackendRedis:
		client, err := db.NewRedisClient(ctx, db.RedisConfig{
			Addresses: []string{cfg.RedisAddr},
			Password:  cfg.RedisPass,
			DB:        cfg.RedisDB,
			PoolSize:  4,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.closers = append(c.closers, func() { _ = client.Close() })
		c.logger.Info("credential store: redis", zap.String("addr", cfg.RedisAddr))
		return credstore.NewRedisStore(client, redisKeyPrefix), nil
	case config.CredBackendFile:
		path := cfg.CredFile
		if path == "" {
			path = credstore.DefaultFilePath()
		}
		c.logger.Debug("credential store: file", zap.String("path", path))
		return credstore.NewFileStore(path, cfg.StoreSecret)
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredBackend)
	}
}

func (c *Console) openJournal(ctx context.Context, databaseURL string) (*postgres.MutationJournal, error) {
	pool, err := db.ConnectDB(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	database := postgres.NewDB(pool)
	c.closers = append(c.closers, database.Close)

	if err := database.Migrate(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("mutation journal enabled")

	return postgres.NewMutationJournal(pool, func() string {
		if p := c.Gate.Principal(); p != nil {
			return p.ID
		}
		return ""
	}, c.logger.Named("journal")), nil
}
