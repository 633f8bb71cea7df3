package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/narrative-engine/pkg/frontend"
)

const (
	PlaceHolderText = "Option number, or :reload <path>, :set <attr> <value>"
	sendTimeout     = 5 * time.Second
	maxDebugLines   = 8
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	client *frontend.Client
	done   <-chan error

	mainViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	transcript transcript
	options    []frontend.Option
	hide       bool
	status     []string
	attributes []frontend.AttributeDisplay
	portrait   portrait
	debug      []string
	notice     string

	// Set when the session goroutine has returned.
	ended bool
	err   error

	showQuitModal bool
}

type snapshotMsg frontend.Snapshot

type sessionEndedMsg struct{ err error }

type sentMsg struct{ err error }

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	debugStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(client *frontend.Client, done <-chan error) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 4096
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	return ConsoleUI{
		client:       client,
		done:         done,
		textarea:     ta,
		mainViewport: mainVp,
		metaViewport: viewport.New(20, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForSession())
}

// waitForSession delivers the next snapshot, or the end of the session.
func (m ConsoleUI) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-m.client.Snapshots():
			return snapshotMsg(snap)
		case err := <-m.done:
			return sessionEndedMsg{err}
		}
	}
}

func (m ConsoleUI) send(cmd frontend.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return sentMsg{m.client.Send(ctx, cmd)}
	}
}

// apply folds a snapshot into the view state.
func (m *ConsoleUI) apply(snap frontend.Snapshot) {
	m.transcript.add(entryText, snap.Main)
	for _, e := range snap.Errors {
		m.transcript.add(entryError, e)
	}
	if snap.Options != nil {
		m.options = snap.Options
		m.hide = snap.HideDisabled
	}
	if snap.Status != nil {
		m.status = snap.Status
	}
	if snap.Attributes != nil {
		m.attributes = snap.Attributes
	}
	for _, a := range snap.Avatars {
		m.portrait.apply(a)
	}
	m.debug = append(m.debug, snap.Debug...)
	if len(m.debug) > maxDebugLines {
		m.debug = m.debug[len(m.debug)-maxDebugLines:]
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.mainViewport, vpCmd = m.mainViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		mainWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - mainWidth - 6
		m.mainViewport.Width = mainWidth - 2
		m.mainViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(mainWidth - 4)
		m.ready = true
		m.refresh()

	case snapshotMsg:
		m.apply(frontend.Snapshot(msg))
		m.refresh()
		return m, m.waitForSession()

	case sessionEndedMsg:
		m.ended = true
		m.err = msg.err
		return m, tea.Quit

	case sentMsg:
		if msg.err != nil {
			m.transcript.add(entryError, "could not send: "+msg.err.Error())
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.transcript.plain()); err != nil {
				m.notice = "copy failed: " + err.Error()
			} else {
				m.notice = "transcript copied"
			}
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			cmd, err := frontend.ParseCommand(input)
			if err != nil {
				m.transcript.add(entryError, err.Error())
				m.refresh()
				return m, nil
			}
			m.transcript.add(entryInput, echo(cmd, m.options))
			if cmd.Type == frontend.CmdChoice {
				m.options = nil
			}
			m.refresh()
			return m, m.send(cmd)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.mainViewport, vpCmd = m.mainViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// echo is the transcript line for a command the player entered.
func echo(cmd frontend.Command, options []frontend.Option) string {
	if cmd.Type == frontend.CmdChoice && cmd.Index < len(options) {
		return fmt.Sprintf("> %d. %s", cmd.Index+1, options[cmd.Index].Text)
	}
	return "> " + cmd.String()
}

func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	width := m.mainViewport.Width - 6
	if width < 10 {
		width = 10
	}
	var content strings.Builder
	content.WriteString(m.transcript.render(width))
	if opts := renderOptions(m.options, m.hide, width); opts != "" {
		content.WriteString("\n" + opts)
	}
	m.mainViewport.SetContent(content.String())
	m.mainViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())
}

// renderOptions numbers options by their position so typed numbers match
// even when disabled ones are hidden.
func renderOptions(options []frontend.Option, hide bool, width int) string {
	var b strings.Builder
	for i, o := range options {
		if !o.Enabled && hide {
			continue
		}
		line := wordwrap.String(fmt.Sprintf("%d. %s", i+1, o.Text), width)
		if o.Enabled {
			b.WriteString(userStyle.Render(line))
		} else {
			b.WriteString(disabledStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")
	for _, line := range m.status {
		content.WriteString(wordwrap.String(line, m.metaViewport.Width) + "\n")
	}
	if len(m.status) > 0 {
		content.WriteString("\n")
	}
	for _, a := range m.attributes {
		content.WriteString(fmt.Sprintf("%s: %d/%d\n", a.Name, a.Value, a.Max))
	}

	if p := m.portrait.String(); p != "" {
		content.WriteString("\n" + titleStyle.Render("PORTRAIT") + "\n")
		content.WriteString(p + "\n")
	}

	if len(m.debug) > 0 {
		content.WriteString("\n" + titleStyle.Render("DEBUG") + "\n")
		for _, d := range m.debug {
			content.WriteString(debugStyle.Render(wordwrap.String(d, m.metaViewport.Width)) + "\n")
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• 1-9: Choose\n")
	content.WriteString("• :reload <path>|default\n")
	content.WriteString("• :set <attr> <value>\n")
	content.WriteString("• Ctrl+Y: Copy transcript\n")
	content.WriteString("• Ctrl+C: Quit\n")
	if m.notice != "" {
		content.WriteString("\n" + promptStyle.Render(m.notice) + "\n")
	}
	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionEndedMsg:
		m.ended = true
		m.err = msg.err
		return m, tea.Quit

	case snapshotMsg:
		m.apply(frontend.Snapshot(msg))
		m.refresh()
		return m, m.waitForSession()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the story?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	mainWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - mainWidth - 6

	mainPanel := mainPanelStyle.Width(mainWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.mainViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(mainWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, metaPanel)
}
