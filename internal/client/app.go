package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
)

var (
	ErrNilServices = errors.New("client: nil services")
	ErrNilUI       = errors.New("client: nil ui")
)

// App owns the client process lifecycle around one set of services.
type App struct {
	services *service.ClientServices
	ui       UI
	logger   *logger.Logger
}

var _ Client = (*App)(nil)

func NewApp(services *service.ClientServices, ui UI, logger *logger.Logger) (*App, error) {
	if services == nil {
		return nil, ErrNilServices
	}
	if ui == nil {
		return nil, ErrNilUI
	}
	return &App{services: services, ui: ui, logger: logger}, nil
}

// Run restores the previous session, starts the background workers and
// blocks in the UI. SIGTERM cancels the run.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	restored, err := a.services.Auth.RestoreSession(ctx)
	if err != nil {
		a.logger.Warn().Str("func", "App.run").Err(err).Msg("stored session could not be restored, starting at login")
	} else {
		a.logger.Info().Str("func", "App.run").Bool("restored", restored).Msg("session restore finished")
	}

	w := a.services.Workers()
	w.Start(ctx)
	defer func() {
		w.Stop()
		a.services.Close()
		a.logger.Info().Str("func", "App.run").Msg("client stopped")
	}()

	if err = a.ui.Run(ctx); err != nil {
		return fmt.Errorf("error running ui: %w", err)
	}
	return nil
}
