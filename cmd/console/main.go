package main

import (
	"os"
	"os/signal"
	"syscall"

	"netbill.com/console/api"
	"netbill.com/console/auth"
	"netbill.com/console/config"
	"netbill.com/console/console"
	"netbill.com/console/log"
)

func main() {
	cfg, err := config.LoadConsoleConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	persist := auth.NewFilePersister(cfg.SessionFile)
	store := auth.NewStore(persist, logger)
	store.Hydrate()

	nav := console.NewNavigator()
	guard := auth.NewSessionGuard(store, nav, cfg.CheckInterval, logger)
	client := api.NewClient(cfg.APIBaseURL, store, persist, guard, logger)

	// Resume monitoring a session that survived a restart. A no-op
	// when nothing was hydrated.
	guard.StartMonitor()

	app := console.New(store, guard, client, nav, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()
	logger.Info().Str("addr", cfg.ListenAddr).Str("api", cfg.APIBaseURL).Msg("console started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("listener failed")
	}

	guard.StopMonitor()
	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
