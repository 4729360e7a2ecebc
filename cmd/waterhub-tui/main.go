package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlindner/waterhub/pkg/analyzer"
	"github.com/mlindner/waterhub/pkg/config"
	"github.com/mlindner/waterhub/pkg/hub"
	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/report"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00BFFF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
	Up    key.Binding
	Down  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run analysis"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to menu"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Back},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type action struct {
	title, desc string
	run         func(ctx context.Context, a *analyzer.Analyzer) (*report.Report, error)
}

func (a action) Title() string       { return a.title }
func (a action) Description() string { return a.desc }
func (a action) FilterValue() string { return a.title }

type view int

const (
	menuView view = iota
	outputView
)

// Messages
type (
	clonedMsg struct {
		analyzer *analyzer.Analyzer
		err      error
	}
	reportMsg struct {
		title  string
		body   string
		alerts int
		err    error
	}
)

type model struct {
	cfg    *config.Config
	client *hub.Client

	currentView view
	actions     list.Model
	output      viewport.Model
	spin        spinner.Model
	help        help.Model
	keys        keyMap

	analyzer *analyzer.Analyzer
	busy     bool
	title    string
	message  string
	isError  bool
	width    int
	height   int
}

func initialModel(cfg *config.Config, client *hub.Client) model {
	items := []list.Item{
		action{
			title: "Structure",
			desc:  "Print the full topology with statistics",
			run: func(ctx context.Context, a *analyzer.Analyzer) (*report.Report, error) {
				return a.PrintStructure(), nil
			},
		},
		action{
			title: "Integrity",
			desc:  "Validate links, value keys and thresholds level by level",
			run: func(ctx context.Context, a *analyzer.Analyzer) (*report.Report, error) {
				return a.CheckIntegrity(), nil
			},
		},
		action{
			title: "Recency",
			desc:  "Group instrumentations by the age of their latest measurement",
			run: func(ctx context.Context, a *analyzer.Analyzer) (*report.Report, error) {
				return a.AnalyzeRecency(ctx)
			},
		},
	}

	l := list.New(items, list.NewDefaultDelegate(), 50, 12)
	l.Title = "Analyses"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))

	return model{
		cfg:         cfg,
		client:      client,
		currentView: menuView,
		actions:     l,
		output:      viewport.New(80, 20),
		spin:        sp,
		help:        help.New(),
		keys:        keys,
		busy:        true,
		message:     fmt.Sprintf("Cloning water hierarchy for %s...", client.Username()),
	}
}

func (m model) cloneCmd() tea.Cmd {
	cfg, client := m.cfg, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		a, err := analyzer.New(ctx, client,
			analyzer.WithDaysBack(cfg.Analysis.DaysBack),
		)
		return clonedMsg{analyzer: a, err: err}
	}
}

func runCmd(a *analyzer.Analyzer, act action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		rep, err := act.run(ctx, a)
		if err != nil {
			return reportMsg{title: act.title, err: err}
		}
		return reportMsg{
			title:  act.title,
			body:   report.RenderTerminal(rep),
			alerts: rep.AlertCount(),
		}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.cloneCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.actions.SetSize(msg.Width-4, msg.Height-10)
		m.output.Width = msg.Width - 4
		m.output.Height = msg.Height - 10

	case clonedMsg:
		m.busy = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Clone failed: %v", msg.err)
			m.isError = true
			return m, nil
		}
		m.analyzer = msg.analyzer
		h := msg.analyzer.Hierarchy()
		m.message = fmt.Sprintf("Hierarchy ready: %d nodes, %d instrumentations, %d assets",
			h.NodeCount(), h.InstrumentationCount(), h.AssetCount())
		m.isError = false

	case reportMsg:
		m.busy = false
		if msg.err != nil {
			m.message = fmt.Sprintf("%s failed: %v", msg.title, msg.err)
			m.isError = true
			return m, nil
		}
		m.title = msg.title
		m.output.SetContent(msg.body)
		m.output.GotoTop()
		m.currentView = outputView
		if msg.alerts > 0 {
			m.message = fmt.Sprintf("%s finished with %d alert(s)", msg.title, msg.alerts)
		} else {
			m.message = fmt.Sprintf("%s finished without alerts", msg.title)
		}
		m.isError = false

	case spinner.TickMsg:
		if m.busy {
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.currentView = menuView

		case key.Matches(msg, m.keys.Enter):
			if m.currentView != menuView || m.busy || m.analyzer == nil {
				break
			}
			act, ok := m.actions.SelectedItem().(action)
			if !ok {
				break
			}
			m.busy = true
			m.message = fmt.Sprintf("Running %s analysis...", act.title)
			m.isError = false
			return m, tea.Batch(m.spin.Tick, runCmd(m.analyzer, act))
		}
	}

	switch m.currentView {
	case menuView:
		m.actions, cmd = m.actions.Update(msg)
		cmds = append(cmds, cmd)
	case outputView:
		m.output, cmd = m.output.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("Water Hub Analyzer - %s (%s)", m.client.Username(), m.cfg.Hub.Region)))
	s.WriteString("\n\n")

	switch m.currentView {
	case menuView:
		s.WriteString(contentStyle.Render(m.actions.View()))
	case outputView:
		s.WriteString(contentStyle.Render(headerStyle.Render(m.title) + "\n\n" + m.output.View()))
	}

	s.WriteString("\n\n")
	if m.busy {
		s.WriteString(contentStyle.Render(m.spin.View() + " " + m.message))
	} else if m.message != "" {
		if m.isError {
			s.WriteString(contentStyle.Render(errorStyle.Render("✗ " + m.message)))
		} else {
			s.WriteString(contentStyle.Render(statusStyle.Render("✓ " + m.message)))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func main() {
	configPath := flag.String("config", "waterhub.yaml", "Path to the yaml configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := hub.NewClient(cfg.Credential(), hub.WithLogger(logging.NewNopLogger()))
	if err != nil {
		log.Fatalf("Failed to create hub client: %v", err)
	}

	p := tea.NewProgram(initialModel(cfg, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
