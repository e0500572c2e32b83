package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/config"
	"github.com/jackzampolin/docparse/internal/ocrcall"
	"github.com/jackzampolin/docparse/internal/server"
	"github.com/jackzampolin/docparse/internal/server/endpoints"
	"github.com/jackzampolin/docparse/internal/store"
	"github.com/jackzampolin/docparse/internal/submit"
	"github.com/jackzampolin/docparse/internal/workflow"
)

var (
	serveHost      string
	servePort      string
	serveMaxUpload int64
	serveWithRedis bool
	serveRedisAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docparse server",
	Long: `Start the docparse HTTP server.

The server restores the last saved record, serves the document page at /
and exposes the workflow API:
  - GET  /api/state          - Current selections, record and status
  - POST /api/sides/{side}   - Select the front or back image
  - POST /api/parse          - Send both sides to the OCR service
  - POST /api/save           - Persist the parsed record
  - POST /api/reset          - Clear the parsed record
  - GET  /api/ocrcalls       - Recent OCR submissions
  - /health, /ready          - Health checks

Flags override config values. The config file is watched; log.level
changes apply without a restart.

Examples:
  docparse serve                       # Start on default port 8080
  docparse serve --port 3000           # Start on custom port
  docparse serve --host 0.0.0.0        # Bind to all interfaces
  docparse serve --with-redis          # Start the managed Redis first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		cfgMgr, err := getConfig(h)
		if err != nil {
			return err
		}
		// Copy so flag overrides never leak into the shared config.
		cfg := *cfgMgr.Get()

		level, err := config.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		var levelVar slog.LevelVar
		levelVar.Set(level)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: &levelVar,
		}))
		cfgMgr.SetLogger(logger)
		cfgMgr.OnChange(func(c *config.Config) {
			l, err := config.ParseLevel(c.Log.Level)
			if err != nil {
				return
			}
			if l != levelVar.Level() {
				levelVar.Set(l)
				logger.Info("log level changed", "level", l)
			}
		})
		if path := cfgMgr.ConfigFileUsed(); path != "" {
			logger.Info("using config file", "path", path)
			cfgMgr.WatchConfig()
		}

		release, err := server.AcquirePidFile(h.PidPath())
		if err != nil {
			return err
		}
		defer release()

		if cmd.Flags().Changed("host") || cfg.Server.Host == "" {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") || cfg.Server.Port == "" {
			cfg.Server.Port = servePort
		}

		if serveWithRedis {
			if cfg.Store.Backend != store.BackendRedis {
				logger.Info("using managed redis as the store", "configured_backend", cfg.Store.Backend)
			}
			mgr, err := getDockerManager(h, &cfg)
			if err != nil {
				return err
			}
			logger.Info("starting redis container", "container", mgr.ContainerName())
			err = mgr.Start(ctx)
			if err == nil {
				err = mgr.WaitReady(ctx, 30*time.Second)
			}
			mgr.Close()
			if err != nil {
				return fmt.Errorf("failed to start redis: %w", err)
			}
			useManagedRedis(&cfg, mgr.Addr())
		}
		if serveRedisAddr != "" {
			cfg.Store.Redis.Addr = serveRedisAddr
		}

		storePath := cfg.Store.Path
		if storePath == "" {
			storePath = h.StorePath()
		}
		st, err := store.Open(ctx, store.Config{
			Backend: cfg.Store.Backend,
			Path:    storePath,
			Redis: store.RedisConfig{
				Addr:     cfg.Store.Redis.Addr,
				Password: config.ResolveEnvVars(cfg.Store.Redis.Password),
				DB:       cfg.Store.Redis.DB,
				Prefix:   cfg.Store.Redis.Prefix,
			},
			Logger: logger,
		})
		if err != nil {
			return err
		}

		ocr := submit.NewClient(submit.Config{
			BaseURL: cfg.OCR.ResolvedBaseURL(),
			Timeout: cfg.OCR.Timeout(),
			Logger:  logger,
		})
		logger.Info("ocr service", "url", ocr.BaseURL()+submit.SubmitPath)

		calls := ocrcall.NewLog(ocrcall.DefaultCapacity)
		wf := workflow.New(workflow.Config{
			Submitter: ocrcall.NewRecorder(ocr, calls, logger),
			Store:     st,
			Key:       cfg.Store.Key,
			Logger:    logger,
		})

		srv, err := server.New(server.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Workflow:       wf,
			Store:          st,
			OCRCalls:       calls,
			MaxUploadBytes: serveMaxUpload,
			ConfigManager:  cfgMgr,
			Home:           h,
			Logger:         logger,
		})
		if err != nil {
			_ = st.Close()
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload-bytes", endpoints.DefaultMaxUploadBytes, "Maximum size of one uploaded image")
	serveCmd.Flags().BoolVar(&serveWithRedis, "with-redis", false, "Start the managed Redis container and use it as the store (overrides store.backend)")
	serveCmd.Flags().StringVar(&serveRedisAddr, "redis-addr", "", "Override store.redis.addr")

	rootCmd.AddCommand(serveCmd)
}

// useManagedRedis points the store at the managed container.
func useManagedRedis(cfg *config.Config, addr string) {
	cfg.Store.Backend = store.BackendRedis
	cfg.Store.Redis.Addr = addr
}
