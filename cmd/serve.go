package cmd

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/eventfinder/pkg/api"
	"github.com/rubiojr/eventfinder/pkg/config"
	"github.com/rubiojr/eventfinder/pkg/log"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides config)",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to bind to (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("debug") {
				log.SetGlobalDebug(true)
			}
			return serve(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

func serve(ctx context.Context, configPath, hostOverride, portOverride string) error {
	logger := log.ForService("serve")

	cfg, store, err := openStorage(configPath)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if cfg.Debug {
		log.SetGlobalDebug(true)
	}

	addr := cfg.Addr()
	if hostOverride != "" || portOverride != "" {
		host := cfg.Host
		if hostOverride != "" {
			host = hostOverride
		}
		port := fmt.Sprintf("%d", cfg.Port)
		if portOverride != "" {
			port = portOverride
		}
		addr = host + ":" + port
	}

	apiServer := api.NewServer(store, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    addr,
		Handler: apiServer.Handler(),
	}

	// Background maintenance keeps the planner statistics fresh and the
	// WAL from growing without bound.
	scheduler := cron.New()
	scheduler.Schedule(cron.Every(cfg.MaintenanceInterval.Duration), cron.FuncJob(func() {
		logger.Debugf("running scheduled database maintenance")
		if err := store.Optimize(); err != nil {
			logger.Warnf("scheduled optimize failed: %v", err)
		}
		if err := store.WALCheckpoint(); err != nil {
			logger.Warnf("scheduled WAL checkpoint failed: %v", err)
		}
	}))
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		logger.Infof("starting API server on http://%s", addr)
		logger.Infof("full-text search available: %v", store.FullTextAvailable())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stdlog.Fatalf("Server failed to start: %v", err)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if watcher != nil {
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(server, logger)
		case <-sigCh:
			fmt.Println("\nShutting down...")
			return shutdown(server, logger)
		case event, ok := <-watchEvents:
			if !ok {
				continue
			}
			// Editors often replace the file atomically, so react to
			// rename/remove as well and re-add the watch.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)

				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					logger.Warnf("config file removed and not replaced, skipping reload")
					continue
				}
				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					if err := watcher.Add(configPath); err != nil {
						logger.Warnf("failed to re-add config file to watcher: %v", err)
					}
				}

				newCfg, err := config.LoadConfig(configPath)
				if err != nil {
					logger.Errorf("failed to reload configuration: %v", err)
					continue
				}
				applyConfigReload(apiServer, newCfg, logger)
			}
		case err, ok := <-watchErrors:
			if !ok {
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

// applyConfigReload applies the settings that can change without a
// restart: CORS origins and debug logging. Bind address and database
// path changes require a restart.
func applyConfigReload(apiServer *api.Server, cfg *config.Config, logger *log.Logger) {
	apiServer.SetCORSOrigins(cfg.CORSOrigins)
	log.SetGlobalDebug(cfg.Debug)
	logger.Infof("configuration reloaded: %d CORS origins, debug=%v", len(cfg.CORSOrigins), cfg.Debug)
}

func shutdown(server *http.Server, logger *log.Logger) error {
	logger.Infof("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
