package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kmadler/bayesode/internal/chain"
)

const liveHistoryCapacity = 600

var (
	liveHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	liveLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	liveValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	liveGraphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	liveHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	liveDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// SampleMsg carries one sampler iteration into the live view.
type SampleMsg struct {
	Iter     int
	Total    int
	Point    []float64
	LogP     float64
	Accepted bool
}

// DoneMsg signals that the sampler finished.
type DoneMsg struct {
	Chain *chain.Chain
	Err   error
}

// LiveModel is a bubbletea model showing a sampler as it runs: the log
// posterior trace, the current point, and the running accept rate.
type LiveModel struct {
	updates     <-chan tea.Msg
	modelName   string
	backend     string
	paramNames  []string
	point       []float64
	logp        float64
	iter, total int
	accepted    int
	logpHistory []float64
	started     time.Time
	done        bool
	err         error
	result      *chain.Chain
}

// NewLiveModel builds the live view. Feed it SampleMsg values through
// updates (from an infer ProgressFunc) and close with a DoneMsg.
func NewLiveModel(modelName, backend string, paramNames []string, updates <-chan tea.Msg) LiveModel {
	return LiveModel{
		updates:     updates,
		modelName:   modelName,
		backend:     backend,
		paramNames:  paramNames,
		logpHistory: make([]float64, 0, liveHistoryCapacity),
		started:     time.Now(),
	}
}

// Result returns the finished chain, if any, after the program exits.
func (m LiveModel) Result() (*chain.Chain, error) { return m.result, m.err }

func (m LiveModel) waitForSample() tea.Cmd {
	return func() tea.Msg { return <-m.updates }
}

func (m LiveModel) Init() tea.Cmd {
	return m.waitForSample()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case SampleMsg:
		m.iter = msg.Iter
		m.total = msg.Total
		m.point = msg.Point
		m.logp = msg.LogP
		if msg.Accepted {
			m.accepted++
		}
		m.logpHistory = append(m.logpHistory, msg.LogP)
		if len(m.logpHistory) > liveHistoryCapacity {
			m.logpHistory = m.logpHistory[1:]
		}
		return m, m.waitForSample()
	case DoneMsg:
		m.done = true
		m.result = msg.Chain
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m LiveModel) View() string {
	var s strings.Builder
	s.WriteString(liveHeaderStyle.Render(strings.ToUpper(m.modelName)+" / "+m.backend) + "\n")

	if len(m.logpHistory) > 1 {
		chart := asciigraph.Plot(m.logpHistory,
			asciigraph.Height(8), asciigraph.Width(60),
			asciigraph.Caption("log posterior"))
		s.WriteString(liveGraphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(liveLabelStyle.Render("Iteration") + liveValueStyle.Render(fmt.Sprintf("%d / %d", m.iter, m.total)) + "\n")
	rate := 0.0
	if m.iter > 0 {
		rate = float64(m.accepted) / float64(m.iter)
	}
	s.WriteString(liveLabelStyle.Render("Accept") + liveValueStyle.Render(fmt.Sprintf("%.1f%%", 100*rate)) + "\n")
	s.WriteString(liveLabelStyle.Render("LogP") + liveValueStyle.Render(fmt.Sprintf("%.3f", m.logp)) + "\n")
	s.WriteString(liveLabelStyle.Render("Elapsed") + liveValueStyle.Render(time.Since(m.started).Round(time.Millisecond).String()) + "\n")

	s.WriteString("\nCURRENT POINT\n")
	for i, name := range m.paramNames {
		val := 0.0
		if i < len(m.point) {
			val = m.point[i]
		}
		s.WriteString("  " + liveLabelStyle.Render(name) + liveValueStyle.Render(fmt.Sprintf("%.4f", val)) + "\n")
	}

	if m.done {
		if m.err != nil {
			s.WriteString("\n" + liveDoneStyle.Render("FAILED: "+m.err.Error()) + "\n")
		} else {
			s.WriteString("\n" + liveDoneStyle.Render("DONE") + "\n")
		}
	}
	s.WriteString(liveHelpStyle.Render("\nQ:Quit"))
	return s.String()
}
