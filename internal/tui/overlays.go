package tui

type confirmModel struct {
	name string
	id   uint64
}

func (m confirmModel) View() string {
	content := "Удалить \"" + m.name + "\"?\n\n"
	content += "y да    n нет"
	return overlayBoxStyle.Render(content)
}

type errorOverlayModel struct {
	message string
}

func (m errorOverlayModel) View() string {
	content := "Ошибка\n\n" + m.message + "\n\nenter / esc закрыть"
	return overlayBoxStyle.Render(content)
}
