package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/client"
	"github.com/MKhiriev/go-pass-sphere/internal/config"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/tui"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/awnumar/memguard"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	printBuildInfo()

	log := logger.NewClientLogger("go-pass-sphere-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.LogLevel != "" && !logger.SetLevel(cfg.App.LogLevel) {
		log.Warn().Str("level", cfg.App.LogLevel).Msg("unknown log level, keeping debug")
	}

	storages, err := store.NewClientStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.Close()

	sess := session.New()
	adapters, err := adapter.NewHTTPAdapters(cfg.Adapter, sess, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create http adapters")
	}

	services := service.NewClientServices(adapters, storages, sess, cfg, log)

	ui, err := tui.New(services, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, ui, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
