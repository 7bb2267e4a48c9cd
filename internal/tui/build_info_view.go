// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/go-pass-sphere/models"
)

const (
	appName        = "GoPassSphere"
	appDescription = "клиент хранилища паролей и TOTP с шифрованием на стороне клиента"
)

func renderBuildInfoWindow(info models.AppBuildInfo) string {
	var b strings.Builder

	rows := [][2]string{
		{"Название приложения", appName},
		{"Описание", appDescription},
		{"Версия", valueOrNA(info.BuildVersion())},
		{"Дата", valueOrNA(info.BuildDate())},
		{"Коммит", valueOrNA(info.BuildCommit())},
	}
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(row[0] + ": " + row[1])
	}

	return renderPage("ИНФОРМАЦИЯ О ПРОГРАММЕ", b.String(), "esc: назад")
}

// renderBuildInfoFooter is the one-line form shown under the vault.
func renderBuildInfoFooter(info models.AppBuildInfo) string {
	return helpStyle.Render(appName + " " + info.Short())
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
