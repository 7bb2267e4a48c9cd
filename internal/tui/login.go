// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// loginModel is the account prompt. The remote authenticates the account
// and issues the delegation; there is no password to type.
type loginModel struct {
	input      textinput.Model
	submitting bool
	errMsg     string
}

func newLoginModel() loginModel {
	input := textinput.New()
	input.Placeholder = "account"
	input.CharLimit = 64
	input.Width = 40
	input.Focus()

	return loginModel{input: input}
}

func (m loginModel) account() string {
	return strings.TrimSpace(m.input.Value())
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("Учетная запись │ [")
	b.WriteString(m.input.View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Войти...]\n")
	} else {
		b.WriteString("\n[Войти]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\nОшибка: ")
		b.WriteString(m.errMsg)
		b.WriteString("\n")
	}

	return renderPage("ВХОД", strings.TrimRight(b.String(), "\n"), "enter: подтвердить")
}
