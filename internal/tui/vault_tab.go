package tui

import (
	"context"

	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/models"
)

// vaultTab is one record collection as the list screen sees it. The typed
// sync controller is hidden behind closures so the screens work on plain
// field slices.
type vaultTab struct {
	title string
	// labels are the form captions, in SensitiveFields order.
	labels []string
	// secret is the index of the field that is masked and copied with "c".
	secret int
	sync   service.VaultSync

	snapshot func() tabSnapshot
	save     func(ctx context.Context, id uint64, fields []string) error
	remove   func(ctx context.Context, id uint64) error
}

type tabRow struct {
	id     uint64
	fields []string
}

type tabSnapshot struct {
	rows       []tabRow
	generation uint64
	warnings   int
	stale      bool
}

func newVaultTab[T models.Record](title string, labels []string, secret int, kind models.Kind[T], ctrl *service.SyncController[T]) vaultTab {
	return vaultTab{
		title:  title,
		labels: labels,
		secret: secret,
		sync:   ctrl,
		snapshot: func() tabSnapshot {
			cache := ctrl.Cache()
			snap := tabSnapshot{
				rows:       make([]tabRow, 0, cache.Len()),
				generation: cache.Generation,
				warnings:   len(cache.Warnings),
				stale:      cache.Stale,
			}
			for _, r := range cache.List() {
				snap.rows = append(snap.rows, tabRow{id: r.RecordID(), fields: r.SensitiveFields()})
			}
			return snap
		},
		save: func(ctx context.Context, id uint64, fields []string) error {
			m := models.CreateRecord(kind.Build(0, fields))
			if id != 0 {
				m = models.UpdateRecord(kind.Build(id, fields))
			}
			_, err := ctrl.Mutate(ctx, m)
			return err
		},
		remove: func(ctx context.Context, id uint64) error {
			_, err := ctrl.Mutate(ctx, models.DeleteRecord[T](id))
			return err
		},
	}
}

func passwordsTab(ctrl *service.SyncController[models.PasswordRecord]) vaultTab {
	return newVaultTab("Пароли", []string{"Название", "Логин", "Пароль"}, 2, models.PasswordKind, ctrl)
}

func totpsTab(ctrl *service.SyncController[models.TOTPRecord]) vaultTab {
	return newVaultTab("TOTP", []string{"Название", "Издатель", "Секрет"}, 2, models.TOTPKind, ctrl)
}
