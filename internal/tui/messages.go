package tui

import "github.com/MKhiriev/go-pass-sphere/models"

type loginDoneMsg struct {
	err error
}

type logoutDoneMsg struct {
	err error
}

type syncEventMsg struct {
	event models.SyncEvent
}

type itemSavedMsg struct {
	err error
}

type itemDeletedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}

type clearStatusMsg struct {
	seq int
}
