// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/models"
	tea "github.com/charmbracelet/bubbletea"
)

// eventBuffer bounds the sync events waiting for the UI. Events past it are
// dropped; the next cycle reports the current status again.
const eventBuffer = 128

var ErrNilServices = errors.New("tui: nil client services")

// TUI is the terminal front end of the vault. It only talks to the client
// services: login and logout go through the auth service, records are read
// from the sync controllers' caches and changed through Mutate.
type TUI struct {
	services  *service.ClientServices
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(services *service.ClientServices, buildInfo models.AppBuildInfo, logger *logger.Logger) (*TUI, error) {
	if services == nil {
		return nil, ErrNilServices
	}
	return &TUI{services: services, buildInfo: buildInfo, logger: logger}, nil
}

// Run shows the UI until the user quits or ctx is cancelled. A user who is
// not authenticated starts at the login prompt.
func (t *TUI) Run(ctx context.Context) error {
	events := make(chan models.SyncEvent, eventBuffer)
	done := make(chan struct{})
	defer close(done)

	for _, c := range t.services.Controllers() {
		unsubscribe := c.Subscribe(func(ev models.SyncEvent) {
			select {
			case events <- ev:
			default:
			}
		})
		defer unsubscribe()
	}

	model := newAppModel(ctx, appDeps{
		auth:     t.services.Auth,
		keyState: t.services.KeyCoordinator,
		hasKey: func() bool {
			_, ok := t.services.Session.Key()
			return ok
		},
		tabs:      []vaultTab{passwordsTab(t.services.Passwords), totpsTab(t.services.TOTPs)},
		events:    events,
		done:      done,
		buildInfo: t.buildInfo,
	})

	t.logger.Info().Str("func", "TUI.Run").Msg("ui started")
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running ui: %w", err)
	}
	t.logger.Info().Str("func", "TUI.Run").Msg("ui stopped")
	return nil
}
