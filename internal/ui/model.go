package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reinhart/codeAgent/internal/assistant"
)

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorDim     = lipgloss.Color("#9399b2")
	colorUser    = lipgloss.Color("#89b4fa") // blue, matches the classic "you" prompt
	colorAgent   = lipgloss.Color("#f9e2af") // yellow, matches the classic assistant prompt
	colorAccent  = lipgloss.Color("#cba6f7")
	colorBorder  = lipgloss.Color("#45475a")
	colorFailure = lipgloss.Color("#f38ba8")

	styleText = lipgloss.NewStyle().Foreground(colorText)
	styleDim  = lipgloss.NewStyle().Foreground(colorDim)

	styleUserHeader  = lipgloss.NewStyle().Foreground(colorUser).Bold(true).MarginTop(1)
	styleAgentHeader = lipgloss.NewStyle().Foreground(colorAgent).Bold(true).MarginTop(1)
	styleError       = lipgloss.NewStyle().Foreground(colorFailure).Bold(true)
	styleStatus      = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	styleChatPane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleInputPane = styleChatPane.BorderForeground(colorAccent)
)

// exitKeywords end the session when typed as the whole utterance.
var exitKeywords = map[string]bool{
	"exit": true,
	"quit": true,
}

type state int

const (
	stateReady state = iota
	stateThinking
)

// Model is the bubbletea chat interface over one Agent.
type Model struct {
	agent    *assistant.Agent
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	state    state
	statuses []string

	// transcript holds every chat block ever shown; the viewport only
	// renders a window of it, so it cannot be used as the store.
	transcript []string

	width  int
	height int
}

func NewModel(agent *assistant.Agent) Model {
	ta := newInput(3, 80)

	welcome := styleAgentHeader.Render("CodeAgent") + "\n" +
		styleText.Render("Ready. Ask me to read, list, or edit files in this workspace. Type 'exit' to leave.")
	vp := viewport.New(80, 20)
	vp.SetContent(welcome)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		agent:      agent,
		textarea:   ta,
		viewport:   vp,
		spinner:    s,
		state:      stateReady,
		transcript: []string{welcome},
	}
}

func newInput(height, width int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Describe a coding task..."
	ta.Focus()
	ta.SetHeight(height)
	ta.SetWidth(width)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 4000
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = styleDim
	ta.FocusedStyle.Text = styleText
	return ta
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

type agentMsg struct {
	response string
	err      error
}

type statusMsg struct {
	msg  string
	diff string
}

func listenForUpdates(sub <-chan assistant.StatusUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-sub
		if !ok {
			return nil
		}
		return statusMsg{msg: update.Message, diff: update.Diff}
	}
}

func (m Model) processInput(input string) tea.Cmd {
	return func() tea.Msg {
		// Bounded wait: a stuck endpoint surfaces as a timeout error
		// instead of hanging the session forever.
		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		resp, err := m.agent.ProcessMessage(ctx, input)
		return agentMsg{response: resp, err: err}
	}
}

func (m *Model) appendChat(block string) {
	m.transcript = append(m.transcript, block)
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatHeight := msg.Height - 8 // status line + input pane + borders
		if chatHeight < 5 {
			chatHeight = 5
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = chatHeight
		m.textarea.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt || m.state != stateReady {
				break
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}
			if exitKeywords[strings.ToLower(input)] {
				return m, tea.Quit
			}

			m.appendChat(styleUserHeader.Render("You") + "\n" + styleText.Render(input) + "\n")
			m.state = stateThinking
			m.statuses = []string{"Working..."}

			// Fresh textarea; reusing one across submissions keeps
			// stale scroll state around.
			m.textarea = newInput(m.textarea.Height(), m.width-4)

			cmds = append(cmds, listenForUpdates(m.agent.Updates()))
			cmds = append(cmds, m.processInput(input))
			return m, tea.Batch(cmds...)
		}

	case statusMsg:
		m.statuses = append(m.statuses, msg.msg)
		if len(m.statuses) > 3 {
			m.statuses = m.statuses[len(m.statuses)-3:]
		}
		if msg.diff != "" {
			m.appendChat(styleAgentHeader.Render("Proposed change") + "\n" + styleDim.Render(msg.diff))
		}
		if m.state == stateThinking {
			cmds = append(cmds, listenForUpdates(m.agent.Updates()))
		}

	case agentMsg:
		m.state = stateReady
		header := styleAgentHeader.Render("CodeAgent")
		if msg.err != nil {
			m.appendChat(header + "\n" + styleError.Render(fmt.Sprintf("Error: %v", msg.err)))
		} else {
			m.appendChat(header + "\n" + styleText.Render(msg.response))
		}
		m.textarea.Focus()

	case spinner.TickMsg:
		if m.state == stateThinking {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.state == stateReady {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	chatView := styleChatPane.Width(m.width - 2).Height(m.viewport.Height + 2).Render(m.viewport.View())

	var status string
	if m.state == stateThinking {
		status = fmt.Sprintf(" %s %s", m.spinner.View(), styleStatus.Render(strings.Join(m.statuses, "  >  ")))
	} else {
		status = styleStatus.Render(" Ready.")
	}
	statusView := lipgloss.NewStyle().Width(m.width).PaddingLeft(1).Render(status)

	prompt := lipgloss.NewStyle().Foreground(colorUser).Render("> ")
	inputView := styleInputPane.Width(m.width - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.textarea.View()))

	return lipgloss.JoinVertical(lipgloss.Left, chatView, statusView, inputView)
}
