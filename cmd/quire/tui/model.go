package tuicmder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	researchcmder "github.com/papercomputeco/quire/cmd/quire/research"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/export"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/render"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/sse"
	"github.com/papercomputeco/quire/pkg/subscription"
	"github.com/papercomputeco/quire/pkg/utils"
)

const (
	historyPaneWidth = 30
	eventBuffer      = 64

	msgSignIn       = "Please sign in to start researching."
	msgLimitReached = "You've reached your monthly research limit. Upgrade your plan for more."
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
	activePane    = paneStyle.BorderForeground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("212")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
)

type focus int

const (
	focusInput focus = iota
	focusHistory
)

type keyMap struct {
	Submit key.Binding
	Focus  key.Binding
	Up     key.Binding
	Down   key.Binding
	PageUp key.Binding
	PageDn key.Binding
	Export key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Focus, k.Up, k.Down, k.Export, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Focus, k.Up, k.Down}, {k.PageUp, k.PageDn, k.Export, k.Reset, k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "research/open")),
		Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "history")),
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev")),
		Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		PageUp: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDn: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Export: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "export")),
		Reset:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type fragmentMsg string

type researchDoneMsg struct {
	outcome *research.Outcome
	err     error
}

type historyLoadedMsg struct {
	items []*history.Item
	err   error
}

type subscriptionMsg struct {
	sub *subscription.Subscription
}

type exportedMsg struct {
	path string
	err  error
}

type modelConfig struct {
	User      *auth.User
	Runner    *research.Runner
	Session   *research.Session
	History   history.Store
	ExportDir string
}

type model struct {
	ctx context.Context
	cfg modelConfig

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	focus      focus
	items      []*history.Item
	cursor     int
	quickIndex int

	sub       *subscription.Subscription
	topic     string
	content   string
	streaming bool
	events    chan bubbletea.Msg

	status    string
	statusErr bool

	width  int
	height int
}

func newModel(ctx context.Context, cfg modelConfig) model {
	input := textinput.New()
	input.Placeholder = "What do you want to research?"
	input.Prompt = "› "
	input.CharLimit = 200
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:        ctx,
		cfg:        cfg,
		input:      input,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		help:       help.New(),
		keys:       defaultKeyMap(),
		quickIndex: -1,
	}
}

func (m model) Init() bubbletea.Cmd {
	return bubbletea.Batch(textinput.Blink, m.loadHistory(), m.loadUsage())
}

func (m model) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshViewport()
		return m, nil

	case bubbletea.KeyMsg:
		return m.handleKey(msg)

	case fragmentMsg:
		m.content += string(msg)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, waitForEvent(m.events)

	case researchDoneMsg:
		return m.finishResearch(msg), nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.setStatus("Loading history failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.items = msg.items
		m.cursor = min(m.cursor, max(len(m.items)-1, 0))
		return m, nil

	case subscriptionMsg:
		m.sub = msg.sub
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Exported "+msg.path, false)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd bubbletea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m model) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, bubbletea.Quit

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput {
			m.focus = focusHistory
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCurrent()

	case key.Matches(msg, m.keys.Reset):
		if !m.streaming {
			m.cfg.Session.Reset()
			m.topic = ""
			m.content = ""
			m.status = ""
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDn):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.startResearch(m.input.Value())
	case key.Matches(msg, m.keys.Up):
		m.cycleQuickTopic(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cycleQuickTopic(1)
		return m, nil
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleHistoryKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.items)-1, 0))
	case key.Matches(msg, m.keys.Submit):
		if m.streaming || len(m.items) == 0 {
			return m, nil
		}
		item := m.items[m.cursor]
		m.topic = item.Topic
		m.content = item.Content
		m.status = ""
		m.refreshViewport()
		m.viewport.GotoTop()
	default:
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// cycleQuickTopic fills an empty or suggested input with the next quick topic.
func (m *model) cycleQuickTopic(delta int) {
	value := m.input.Value()
	if value != "" && (m.quickIndex < 0 || value != researchcmder.QuickTopics[m.quickIndex]) {
		return
	}
	n := len(researchcmder.QuickTopics)
	m.quickIndex = ((m.quickIndex+delta)%n + n) % n
	m.input.SetValue(researchcmder.QuickTopics[m.quickIndex])
	m.input.CursorEnd()
}

func (m model) startResearch(topic string) (bubbletea.Model, bubbletea.Cmd) {
	topic = strings.TrimSpace(topic)
	if topic == "" || m.streaming {
		return m, nil
	}

	events := make(chan bubbletea.Msg, eventBuffer)
	m.events = events
	m.streaming = true
	m.topic = topic
	m.content = ""
	m.status = ""
	m.quickIndex = -1
	m.input.SetValue("")
	m.refreshViewport()

	ctx := m.ctx
	cfg := m.cfg
	go func() {
		defer close(events)
		outcome, err := cfg.Runner.Run(ctx, cfg.User, cfg.Session, topic, func(f sse.Fragment) {
			select {
			case events <- fragmentMsg(f):
			case <-ctx.Done():
			}
		})
		select {
		case events <- researchDoneMsg{outcome: outcome, err: err}:
		case <-ctx.Done():
		}
	}()

	return m, bubbletea.Batch(m.spinner.Tick, waitForEvent(events))
}

func (m model) finishResearch(msg researchDoneMsg) model {
	m.streaming = false

	if msg.outcome != nil {
		m.content = msg.outcome.Item.Content
		m.sub = msg.outcome.Subscription
		m.items = append([]*history.Item{msg.outcome.Item}, m.items...)
		if len(m.items) > history.MaxItems {
			m.items = m.items[:history.MaxItems]
		}
	}

	switch {
	case errors.Is(msg.err, subscription.ErrLimitReached):
		m.setStatus(msgLimitReached, true)
	case errors.Is(msg.err, research.ErrSignInRequired):
		m.setStatus(msgSignIn, true)
	case msg.err != nil:
		m.setStatus(msg.err.Error(), true)
	default:
		m.setStatus("Research complete", false)
	}

	m.refreshViewport()
	m.viewport.GotoTop()
	return m
}

func (m *model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *model) resize() {
	bodyHeight := m.height - 6
	if m.help.ShowAll {
		bodyHeight--
	}
	m.viewport.Width = max(m.width-historyPaneWidth-4, 20)
	m.viewport.Height = max(bodyHeight-2, 3)
	m.input.Width = max(m.width-4, 10)
	m.help.Width = m.width
}

// refreshViewport shows the raw text while streaming and sections after.
func (m *model) refreshViewport() {
	switch {
	case m.content == "" && m.streaming:
		m.viewport.SetContent(mutedStyle.Render("Waiting for the first words…"))
	case m.content == "":
		m.viewport.SetContent(mutedStyle.Render("Try: " + strings.Join(researchcmder.QuickTopics, ", ")))
	case m.streaming:
		m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(m.content))
	default:
		m.viewport.SetContent(render.NewTerminal(nil, m.viewport.Width).Render(render.Sections(m.content)))
	}
}

func (m model) View() string {
	header := titleStyle.Render("quire")
	if m.topic != "" {
		header += mutedStyle.Render("  ·  ") + m.topic
	}
	if m.sub != nil {
		header += mutedStyle.Render(fmt.Sprintf("  ·  %d/%d this month", m.sub.ResearchCount, m.sub.MonthlyLimit))
	}

	historyBox := paneStyle
	bodyBox := activePane
	if m.focus == focusHistory {
		historyBox, bodyBox = activePane, paneStyle
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		historyBox.Width(historyPaneWidth).Height(m.viewport.Height).Render(m.viewHistory()),
		bodyBox.Render(m.viewport.View()),
	)

	status := m.status
	switch {
	case m.streaming:
		status = m.spinner.View() + " Researching " + m.topic
	case m.statusErr:
		status = errorStyle.Render(status)
	case status != "":
		status = okStyle.Render(status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.input.View(),
		status,
		m.help.View(m.keys),
	)
}

func (m model) viewHistory() string {
	if len(m.items) == 0 {
		return mutedStyle.Render("No history yet")
	}

	lines := make([]string, 0, len(m.items))
	for i, item := range m.items {
		line := utils.Truncate(item.Topic, historyPaneWidth-2)
		if i == m.cursor && m.focus == focusHistory {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m model) loadHistory() bubbletea.Cmd {
	ctx, store, userID := m.ctx, m.cfg.History, m.cfg.User.ID
	return func() bubbletea.Msg {
		items, err := store.List(ctx, userID)
		return historyLoadedMsg{items: items, err: err}
	}
}

func (m model) loadUsage() bubbletea.Cmd {
	ctx, runner, user := m.ctx, m.cfg.Runner, m.cfg.User
	return func() bubbletea.Msg {
		sub, err := subscription.Ensure(ctx, runner.Subscriptions, user.ID, time.Now())
		if err != nil {
			return nil
		}
		return subscriptionMsg{sub: sub}
	}
}

func (m model) exportCurrent() bubbletea.Cmd {
	if m.streaming || m.content == "" {
		return nil
	}
	dir, topic, content := m.cfg.ExportDir, m.topic, m.content
	return func() bubbletea.Msg {
		path, err := researchcmder.WriteExport(dir, topic, content, export.FormatMarkdown)
		return exportedMsg{path: path, err: err}
	}
}

func waitForEvent(events <-chan bubbletea.Msg) bubbletea.Cmd {
	return func() bubbletea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
