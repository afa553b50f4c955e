package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/encarworker/config"
	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/internal"
	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/logger"
	"sjsage522/encarworker/services/cache"
	"sjsage522/encarworker/services/notifier"
	"sjsage522/encarworker/services/publisher"
	"sjsage522/encarworker/services/store"
	"sjsage522/encarworker/services/worker"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "encarworker",
		Short:         "Watch Encar.com searches and send new car ads to Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(false)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.json", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with ENCAR_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(initDBCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads .env and the config file and builds the logger.
// validate is off for commands that never talk to Telegram.
func setup(validate bool) (*config.Config, *logger.Logger, error) {
	// A missing .env is fine
	_ = godotenv.Load(envFile)

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		Dir:         cfg.LogsDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			log.Error().Err(err).Msg("Invalid configuration")
			log.Close()
			return nil, nil, err
		}
	}

	return cfg, log, nil
}

// Services holds all the initialized services
type Services struct {
	Store     *store.SQLiteStore
	Notifier  notifier.Notifier
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes all required services. Redis and memcache
// are optional and only wired when an address is configured.
func initializeServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	services := &Services{
		Store: store.NewSQLiteStore(cfg.DBPath),
		Notifier: notifier.NewTelegramNotifier(
			helpers.NewClient(15*time.Second),
			cfg.TelegramAPIURL,
			cfg.TelegramToken,
			cfg.TelegramChatID,
		),
	}

	if err := services.Store.Init(ctx); err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.DBPath).Msg("Known listings database ready")

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache not reachable, guard will retry per listing")
		} else {
			log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
		services.Cache = mc
	}

	if cfg.RedisAddr != "" {
		rp := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := rp.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis not reachable, publishing will be retried per listing")
		} else {
			log.Info().
				Str("addr", cfg.RedisAddr).
				Int("db", cfg.RedisDB).
				Str("stream", cfg.RedisStream).
				Msg("Connected to Redis")
		}
		services.Publisher = rp
	}

	return services, nil
}

// newWorker wires the services into a worker
func newWorker(cfg *config.Config, log *logger.Logger, services *Services) *worker.Worker {
	deps := internal.Dependencies{
		Fetchers:  crawler.NewFetcherFactory(cfg, log),
		Store:     services.Store,
		Notifier:  services.Notifier,
		Cache:     services.Cache,
		Publisher: services.Publisher,
	}

	return worker.NewWorker(deps, worker.Options{
		LinksFile:      cfg.LinksFile,
		AllowedHosts:   cfg.AllowedHosts,
		DictionaryPath: cfg.DictionaryPath,
		MessageDelay:   cfg.MessageDelay,
		LinkDelay:      cfg.LinkDelay,
		RetryDelay:     cfg.RetryDelay,
		NotifyGuardTTL: cfg.NotifyGuardTTL,
	}, log)
}

// runWorker starts the worker and blocks until a signal arrives.
// With once set it runs a single pass instead.
func runWorker(once bool) error {
	cfg, log, err := setup(true)
	if err != nil {
		return err
	}
	defer log.Close()

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	links, err := helpers.LoadLinks(cfg.LinksFile, cfg.AllowedHosts)
	if err != nil {
		log.Error().Err(err).Msg("Cannot read search links")
		return err
	}

	services, err := initializeServices(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return err
	}
	defer services.Cleanup()

	log.Info().
		Str("environment", cfg.Environment).
		Str("fetcher", cfg.Fetcher).
		Str("user", cfg.User).
		Int("links", len(links)).
		Msg("Starting application")

	w := newWorker(cfg, log, services)

	workerDone := make(chan error, 1)
	go func() {
		if once {
			stats, err := w.RunPass(ctx)
			if err == nil {
				log.Info().
					Str("pass", stats.ID).
					Int("links", stats.Links).
					Int("skipped", stats.Skipped).
					Int("listings", stats.Listings).
					Int("new", stats.New).
					Int("notified", stats.Notified).
					Dur("elapsed", stats.Elapsed).
					Msg("Pass finished")
			}
			workerDone <- err
			return
		}
		log.Info().Msg("Starting Encar worker")
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
			return err
		}
		log.Info().Msg("Worker exited normally")
	}

	log.Info().Msg("Shutting down gracefully...")
	return nil
}
