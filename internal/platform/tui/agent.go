package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/preich21/reinforcement-learning-learning/internal/core"
	"github.com/preich21/reinforcement-learning-learning/internal/env"
	"github.com/preich21/reinforcement-learning-learning/internal/rl"
)

var agentStatusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")).
	Padding(0, 1)

// AgentModel is the Bubble Tea model for watching a trained policy play.
// The policy picks every action; the keyboard only controls playback
// (pause, restart, quit).
type AgentModel struct {
	env      env.Visualizer
	policy   rl.Policy
	screen   *core.Screen
	tickRate int
	seed     int64

	obs       []float64
	episode   int
	epReturn  float64
	lastScore int
	paused     bool
	finished   bool // Episode over, waiting before auto-restart
	backToMenu bool // Only meaningful inside an SSH session
	quitting   bool
}

// NewAgentModel creates a playback model for the given environment and policy.
func NewAgentModel(e env.Visualizer, policy rl.Policy, tickRate int, seed int64) AgentModel {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w, h := e.ScreenSize()

	m := AgentModel{
		env:      e,
		policy:   policy,
		screen:   core.NewScreen(w, h),
		tickRate: tickRate,
		seed:     seed,
		episode:  1,
	}
	m.obs = e.Reset(seed)
	return m
}

// Init starts the tick loop.
func (m AgentModel) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages and updates the model state.
func (m AgentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "b", "esc":
			m.backToMenu = true
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
		case "r":
			m.restart()
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m *AgentModel) restart() {
	m.episode++
	m.epReturn = 0
	m.lastScore = 0
	m.finished = false
	m.obs = m.env.Reset(m.seed + int64(m.episode))
}

// handleTick advances one step of the policy-driven episode.
func (m AgentModel) handleTick() (tea.Model, tea.Cmd) {
	if m.paused {
		return m, tickCmd(m.tickRate)
	}

	if m.finished {
		m.restart()
		return m, tickCmd(m.tickRate)
	}

	action := m.policy.SelectAction(m.obs)
	tr, err := m.env.Step(action)
	if err != nil {
		// Stale terminal state, start over
		m.restart()
		return m, tickCmd(m.tickRate)
	}

	m.obs = tr.Obs
	m.epReturn += tr.Reward
	m.lastScore = tr.Info.Score
	if tr.Done || tr.Truncated {
		m.finished = true
	}

	return m, tickCmd(m.tickRate)
}

// View renders the game plus a playback status line.
func (m AgentModel) View() string {
	if m.quitting {
		return ""
	}

	m.env.Render(m.screen)

	status := fmt.Sprintf("agent | episode %d | score %d | return %.2f | p pause, r restart, b back, q quit",
		m.episode, m.lastScore, m.epReturn)
	if m.paused {
		status = "agent | PAUSED | p resume, q quit"
	}

	return RenderScreen(m.screen) + "\n" + agentStatusStyle.Render(status)
}

// IsQuitting returns true if the user requested to quit entirely.
func (m AgentModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user requested to return to the menu.
func (m AgentModel) BackToMenu() bool {
	return m.backToMenu
}

// RunAgent starts the Bubble Tea program for policy playback.
func RunAgent(e env.Visualizer, policy rl.Policy, tickRate int, seed int64) error {
	model := NewAgentModel(e, policy, tickRate, seed)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
