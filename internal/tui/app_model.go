package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenLogin screen = iota
	screenList
	screenForm
)

const noticeTTL = 2 * time.Second

// keyStatus is the part of the key coordinator the vault screen reports on.
type keyStatus interface {
	LastError() error
	Retry()
}

type appDeps struct {
	auth      service.ClientAuthService
	keyState  keyStatus
	hasKey    func() bool
	tabs      []vaultTab
	events    <-chan models.SyncEvent
	done      <-chan struct{}
	buildInfo models.AppBuildInfo
}

type appModel struct {
	ctx context.Context
	appDeps

	screen  screen
	active  int
	cursor  int
	login   loginModel
	form    recordFormModel
	status  []tabStatus
	spinner spinner.Model

	confirm       *confirmModel
	overlay       *errorOverlayModel
	showBuildInfo bool

	notice    string
	noticeSeq int
}

func newAppModel(ctx context.Context, deps appDeps) appModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	m := appModel{
		ctx:     ctx,
		appDeps: deps,
		screen:  screenLogin,
		login:   newLoginModel(),
		status:  make([]tabStatus, len(deps.tabs)),
		spinner: s,
	}
	if deps.auth.IsAuthenticated(ctx) {
		m.screen = screenList
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case syncEventMsg:
		if i := m.tabIndex(msg.event.Collection); i >= 0 {
			m.status[i] = m.status[i].apply(msg.event)
		}
		return m, m.waitForEvent()
	case loginDoneMsg:
		m.login.submitting = false
		if msg.err != nil {
			m.login.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.login = newLoginModel()
		m.screen = screenList
		m.active, m.cursor = 0, 0
		return m, nil
	case logoutDoneMsg:
		m.screen = screenLogin
		m.login = newLoginModel()
		m.status = make([]tabStatus, len(m.tabs))
		m.active, m.cursor = 0, 0
		if msg.err != nil {
			m.showErrorf("Локальные данные удалены не полностью: %s", humanizeError(msg.err))
		}
		return m, textinput.Blink
	case itemSavedMsg:
		m.form.submitting = false
		if msg.err != nil {
			m.form.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.screen = screenList
		cmd := m.setNotice("Сохранено")
		return m, cmd
	case itemDeletedMsg:
		if msg.err != nil {
			m.showErrorf("Не удалось удалить запись: %s", humanizeError(msg.err))
			return m, nil
		}
		cmd := m.setNotice("Удалено")
		return m, cmd
	case copiedMsg:
		if msg.err != nil {
			m.showErrorf("%s", msg.err.Error())
			return m, nil
		}
		cmd := m.setNotice("Скопировано в буфер обмена")
		return m, cmd
	case clearStatusMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m.forwardToInput(msg)
}

func (m appModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo))
	}

	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.View()
	case screenForm:
		body = m.form.View(m.tabs[m.active].title)
	default:
		body = m.listView()
	}

	if m.confirm != nil {
		body += "\n\n" + m.confirm.View()
	}
	if m.overlay != nil {
		body += "\n\n" + m.overlay.View()
	}
	return appStyle.Render(body + "\n\n" + renderBuildInfoFooter(m.buildInfo))
}

func (m *appModel) showErrorf(format string, args ...any) {
	m.overlay = &errorOverlayModel{message: fmt.Sprintf(format, args...)}
}

func (m *appModel) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	return cmdClearStatus(m.noticeSeq)
}

func (m appModel) tabIndex(collection string) int {
	for i, t := range m.tabs {
		if t.sync.Collection() == collection {
			return i
		}
	}
	return -1
}

func (m appModel) currentRow() (tabRow, bool) {
	rows := m.tabs[m.active].snapshot().rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return tabRow{}, false
	}
	return rows[m.cursor], true
}

// ── Keys ─────────────────────────────────────────────────────────────────────

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.interrupt) {
		return m, tea.Quit
	}

	if m.overlay != nil {
		if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
			m.overlay = nil
		}
		return m, nil
	}

	if m.showBuildInfo {
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.buildInfo) {
			m.showBuildInfo = false
		}
		return m, nil
	}

	if m.confirm != nil {
		switch {
		case key.Matches(msg, keys.yes):
			id := m.confirm.id
			m.confirm = nil
			return m, m.cmdDelete(m.tabs[m.active], id)
		case key.Matches(msg, keys.no):
			m.confirm = nil
		}
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenForm:
		return m.updateForm(msg)
	default:
		return m.updateList(msg)
	}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, keys.enter) {
		return m.forwardToInput(msg)
	}
	if m.login.submitting {
		return m, nil
	}

	account := m.login.account()
	if account == "" {
		m.login.errMsg = humanizeError(service.ErrEmptyAccount)
		return m, nil
	}

	m.login.errMsg = ""
	m.login.submitting = true
	return m, m.cmdLogin(account)
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.tabs[m.active]

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.nextTab):
		m.active = (m.active + 1) % len(m.tabs)
		m.cursor = 0
	case key.Matches(msg, keys.prevTab):
		m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
		m.cursor = 0
	case key.Matches(msg, keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.down):
		if m.cursor < len(tab.snapshot().rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.newItem):
		m.form = newRecordFormModel(tab, nil)
		m.screen = screenForm
		return m, textinput.Blink
	case key.Matches(msg, keys.edit):
		if row, ok := m.currentRow(); ok {
			m.form = newRecordFormModel(tab, &row)
			m.screen = screenForm
			return m, textinput.Blink
		}
	case key.Matches(msg, keys.delete):
		if row, ok := m.currentRow(); ok {
			m.confirm = &confirmModel{name: fieldAt(row, 0), id: row.id}
		}
	case key.Matches(msg, keys.copy):
		return m, m.copyField(tab.secret)
	case key.Matches(msg, keys.copyUser):
		return m, m.copyField(1)
	case key.Matches(msg, keys.sync):
		tab.sync.Trigger()
	case key.Matches(msg, keys.retryKey):
		m.keyState.Retry()
	case key.Matches(msg, keys.logout):
		return m, m.cmdLogout()
	case key.Matches(msg, keys.buildInfo):
		m.showBuildInfo = true
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		return m, nil
	case key.Matches(msg, keys.tab):
		m.form = m.form.focusNext()
		return m, nil
	case key.Matches(msg, keys.backtab):
		m.form = m.form.focusPrev()
		return m, nil
	case key.Matches(msg, keys.enter):
		if m.form.submitting {
			return m, nil
		}
		values := m.form.values()
		if strings.TrimSpace(values[0]) == "" {
			m.form.errMsg = "Название обязательно"
			return m, nil
		}
		m.form.errMsg = ""
		m.form.submitting = true
		return m, m.cmdSave(m.tabs[m.active], m.form.id, values)
	}
	return m.forwardToInput(msg)
}

func (m appModel) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		m.login.input, cmd = m.login.input.Update(msg)
	case screenForm:
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	}
	return m, cmd
}

func (m appModel) copyField(i int) tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	value := fieldAt(row, i)
	if value == "" {
		return func() tea.Msg { return copiedMsg{err: fmt.Errorf("поле %q пустое", m.tabs[m.active].labels[i])} }
	}
	return cmdCopyToClipboard(value)
}

// ── Views ────────────────────────────────────────────────────────────────────

func (m appModel) listView() string {
	tab := m.tabs[m.active]
	snap := tab.snapshot()

	var b strings.Builder
	for i, t := range m.tabs {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == m.active {
			b.WriteString(activeTabStyle.Render("[" + t.title + "]"))
		} else {
			b.WriteString(tabStyle.Render(" " + t.title + " "))
		}
	}
	b.WriteString("\n\n")

	if len(snap.rows) == 0 {
		b.WriteString("Записей нет\n")
	}
	for i, row := range snap.rows {
		line := padRight(fitText(fieldAt(row, 0), 24), 24) + "  " +
			padRight(fitText(valueOrDash(fieldAt(row, 1)), 20), 20) + "  " +
			maskSecret(fieldAt(row, tab.secret))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status[m.active].render(m.spinner.View(), snap))
	if line := m.keyLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
	}

	return renderPage(appName, b.String(),
		"tab: раздел │ n: новая │ e: изменить │ d: удалить │ c/u: копировать │ s: синхронизировать │ l: выйти │ v: о программе │ q: выход")
}

func (m appModel) keyLine() string {
	if err := m.keyState.LastError(); err != nil {
		return errorStyle.Render(humanizeError(err) + " (r: повторить)")
	}
	if !m.hasKey() {
		return m.spinner.View() + " получение ключа шифрования..."
	}
	return ""
}

func fieldAt(row tabRow, i int) string {
	if i < 0 || i >= len(row.fields) {
		return ""
	}
	return row.fields[i]
}

// ── Commands ─────────────────────────────────────────────────────────────────

func (m appModel) waitForEvent() tea.Cmd {
	events, done := m.events, m.done
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-events:
			return syncEventMsg{event: ev}
		case <-done:
			return nil
		}
	}
}

func (m appModel) cmdLogin(account string) tea.Cmd {
	ctx := m.ctx
	auth := m.auth
	return func() tea.Msg {
		return loginDoneMsg{err: auth.Login(ctx, account, nil)}
	}
}

func (m appModel) cmdLogout() tea.Cmd {
	ctx := m.ctx
	auth := m.auth
	return func() tea.Msg {
		return logoutDoneMsg{err: auth.Logout(ctx)}
	}
}

func (m appModel) cmdSave(tab vaultTab, id uint64, fields []string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return itemSavedMsg{err: tab.save(ctx, id, fields)}
	}
}

func (m appModel) cmdDelete(tab vaultTab, id uint64) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return itemDeletedMsg{err: tab.remove(ctx, id)}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return copiedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
