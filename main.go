package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"github.com/ogri-la/gear-journey-go/src/bis"
	"github.com/ogri-la/gear-journey-go/src/cache"
	"github.com/ogri-la/gear-journey-go/src/catalogue"
	"github.com/ogri-la/gear-journey-go/src/cli"
	"github.com/ogri-la/gear-journey-go/src/config"
	"github.com/ogri-la/gear-journey-go/src/displayid"
	httpClient "github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/retry"
	"github.com/ogri-la/gear-journey-go/src/server"
	"github.com/ogri-la/gear-journey-go/src/wowhead"
)

var APP_VERSION = "unreleased"
var APP_LOC = "https://github.com/ogri-la/gear-journey-go"

func main() {
	// Parse command line flags
	flags, err := cli.ParseFlags(os.Args, APP_VERSION)
	if err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	logLevel, err := cli.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, cfg); err != nil {
		slog.Error("command failed", "subcommand", flags.SubCommand, "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *cli.Flags, cfg config.Config) error {
	// Setup cache
	cacheConfig := cfg.Cache
	if !filepath.IsAbs(cacheConfig.Directory) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheConfig.Directory = filepath.Join(cwd, cacheConfig.Directory)
	}
	if err := os.MkdirAll(cacheConfig.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Upstream requests are cached on disk and retried
	cachingTransport := cache.NewFileCachingTransport(cacheConfig, http.DefaultTransport)
	headers := map[string]string{"Referer": cfg.Upstream.Referer}
	cachedClient := httpClient.NewRealHTTPClient(cachingTransport, userAgent(cfg), headers)
	upstream := retry.NewClient(cachedClient, cfg.Retry)

	service := catalogue.NewService(newLoader(cfg))
	handler := cli.NewCommandHandler(service, os.Stdout)

	// Execute command
	switch flags.SubCommand {
	case cli.ServeSubCommand:
		serverConfig := cfg.Server
		if flags.ServeConfig.BindAddress != "" {
			serverConfig.BindAddress = flags.ServeConfig.BindAddress
		}
		if flags.ServeConfig.Port != 0 {
			serverConfig.Port = flags.ServeConfig.Port
		}

		var slotResolver *wowhead.SlotResolver
		if cfg.Upstream.ProbeSlotPaths {
			slotResolver = wowhead.NewSlotResolver(upstream, cfg.Upstream.CDNBase, wowhead.DefaultAlternates())
		}
		displayIDs := wowhead.NewClient(upstream, cfg.Upstream.WowheadBase, slotResolver)

		srv := server.New(server.Config{
			Addr:            serverConfig.Addr(),
			ShutdownTimeout: serverConfig.ShutdownTimeout,
			AssetBase:       cfg.Upstream.AssetBase,
		}, service, displayIDs, upstream)
		return handler.Serve(ctx, srv, cfg.Retry)

	case cli.PlanSubCommand:
		var tracker *displayid.Tracker
		if flags.PlanConfig.Models {
			// the display id endpoint is our own server, don't cache it on disk
			local := httpClient.NewRealHTTPClient(http.DefaultTransport, userAgent(cfg), nil)
			fetcher := displayid.NewHTTPFetcher(local, cfg.Upstream.DisplayIDBase)
			tracker = displayid.NewTracker(displayid.NewResolver(fetcher))
		}
		return handler.Plan(ctx, flags.PlanConfig, tracker)

	case cli.SearchSubCommand:
		return handler.Search(ctx, flags.SearchConfig)

	case cli.ListSubCommand:
		repo, closeRepo, err := openRepository(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeRepo()

		store, err := bis.NewStore(&bis.StoreConfig{Repository: repo, ListName: cfg.Store.ListName})
		if err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		return handler.List(ctx, flags.ListConfig, store)

	case cli.ValidateSubCommand:
		validateConfig := flags.ValidateConfig
		if validateConfig.File == "" {
			validateConfig.File = cfg.Catalogue.Path
		}
		return handler.Validate(validateConfig)

	default:
		return fmt.Errorf("unknown subcommand: %s", flags.SubCommand)
	}
}

// newLoader reads items.json from disk when a path is configured, otherwise over HTTP
func newLoader(cfg config.Config) catalogue.Loader {
	if cfg.Catalogue.Path != "" {
		return catalogue.NewFileLoader(cfg.Catalogue.Path)
	}
	// the loader retries on its own
	client := httpClient.NewRealHTTPClient(http.DefaultTransport, userAgent(cfg), nil)
	return catalogue.NewHTTPLoader(client, cfg.Catalogue.URL, cfg.Retry)
}

// openRepository connects the configured selection list backend
func openRepository(ctx context.Context, cfg config.StoreConfig) (bis.Repository, func(), error) {
	switch cfg.Backend {
	case config.RedisBackend:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		repo, err := bis.NewRedis(&bis.RedisConfig{Client: client})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		slog.Info("redis connected", "addr", cfg.Redis.Addr)
		return repo, func() { client.Close() }, nil

	case config.PostgresBackend:
		dsn := cfg.Database.DSN()
		if err := bis.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo, err := bis.NewPostgres(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("database connected", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)
		return repo, pool.Close, nil

	default:
		slog.Warn("selection list is kept in memory and is lost on exit")
		return bis.NewMemory(), func() {}, nil
	}
}

func userAgent(cfg config.Config) string {
	if cfg.Upstream.UserAgent != "" {
		return cfg.Upstream.UserAgent
	}
	return "gear-journey-go/" + APP_VERSION + " (" + APP_LOC + ")"
}
