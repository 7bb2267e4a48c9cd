package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// recordFormModel edits the three fields of a record. id is 0 for a new
// record.
type recordFormModel struct {
	labels []string
	inputs []textinput.Model
	focus  int
	id     uint64
	errMsg string

	submitting bool
}

func newRecordFormModel(tab vaultTab, row *tabRow) recordFormModel {
	inputs := make([]textinput.Model, len(tab.labels))
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].CharLimit = 512
	}
	inputs[tab.secret].EchoMode = textinput.EchoPassword
	inputs[tab.secret].EchoCharacter = '*'
	inputs[0].Focus()

	m := recordFormModel{labels: tab.labels, inputs: inputs}
	if row == nil {
		return m
	}

	m.id = row.id
	for i := range m.inputs {
		if i < len(row.fields) {
			m.inputs[i].SetValue(row.fields[i])
		}
	}
	return m
}

func (m recordFormModel) editing() bool {
	return m.id != 0
}

func (m recordFormModel) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

func (m recordFormModel) focusNext() recordFormModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m recordFormModel) focusPrev() recordFormModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m recordFormModel) View(tabTitle string) string {
	title := "НОВАЯ ЗАПИСЬ: " + tabTitle
	if m.editing() {
		title = "РЕДАКТИРОВАНИЕ: " + m.inputs[0].Value()
	}

	width := 0
	for _, l := range m.labels {
		width = max(width, len([]rune(l)))
	}

	var b strings.Builder
	for i, in := range m.inputs {
		b.WriteString(padRight(m.labels[i], width))
		b.WriteString(" │ [")
		b.WriteString(in.View())
		b.WriteString("]\n")
	}
	if m.submitting {
		b.WriteString("\nСохранение...\n")
	}
	if m.errMsg != "" {
		b.WriteString("\nОшибка: ")
		b.WriteString(m.errMsg)
		b.WriteString("\n")
	}

	return renderPage(title, strings.TrimRight(b.String(), "\n"), "esc: отмена │ tab: след. поле │ enter: сохранить")
}
