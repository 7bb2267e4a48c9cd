// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
)

func humanizeServerUnavailableError(err error) string {
	if err == nil {
		return ""
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Отсутствует сеть или Сервер недоступен"
	}

	return err.Error()
}

// humanizeError turns the service sentinels into messages for the user.
func humanizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrEmptyAccount):
		return "Укажите учетную запись"
	case errors.Is(err, service.ErrSessionExpired):
		return "Сессия истекла, войдите снова"
	case errors.Is(err, service.ErrNotAuthenticated):
		return "Сервер отклонил сессию, войдите снова"
	case errors.Is(err, service.ErrKeyUnavailable):
		return "Ключ шифрования еще не получен"
	case errors.Is(err, service.ErrDerivation):
		if errors.Is(err, crypto.ErrAuthentication) {
			return "Ключевой материал не прошел проверку подписи"
		}
		return "Не удалось получить ключ шифрования: " + humanizeServerUnavailableError(err)
	case errors.Is(err, adapter.ErrNotFound):
		return "Запись не найдена на сервере"
	case errors.Is(err, adapter.ErrServerInternal):
		return "Внутренняя ошибка сервера"
	}
	return humanizeServerUnavailableError(err)
}
