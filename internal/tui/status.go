package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-pass-sphere/models"
)

// tabStatus is what the status line knows about one collection, built from
// its sync events.
type tabStatus struct {
	syncing  bool
	err      error
	warnings int
	stale    bool
}

// apply folds a sync event into the status. Mutation events are reported
// through their own commands and do not touch the status line.
func (s tabStatus) apply(ev models.SyncEvent) tabStatus {
	if ev.Operation != models.OperationSync {
		return s
	}
	switch ev.Phase {
	case models.PhaseStarted:
		s.syncing = true
	case models.PhaseSucceeded:
		s = tabStatus{warnings: ev.Warnings}
	case models.PhaseFailed:
		s = tabStatus{err: ev.Reason, warnings: ev.Warnings, stale: ev.Stale}
	}
	return s
}

func (s tabStatus) render(spinner string, snap tabSnapshot) string {
	var parts []string
	if s.syncing {
		parts = append(parts, spinner+" синхронизация...")
	}
	if s.err != nil {
		parts = append(parts, errorStyle.Render("ошибка синхронизации: "+humanizeError(s.err)))
	}
	if warnings := max(s.warnings, snap.warnings); warnings > 0 {
		parts = append(parts, fmt.Sprintf("не расшифровано записей: %d", warnings))
	}
	if s.stale || snap.stale {
		parts = append(parts, "данные из локального снимка")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("синхронизировано, версия %d", snap.generation)
	}
	return strings.Join(parts, " │ ")
}
