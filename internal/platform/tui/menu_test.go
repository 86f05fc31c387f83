package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/preich21/reinforcement-learning-learning/internal/core"
	"github.com/preich21/reinforcement-learning-learning/internal/env"
	"github.com/preich21/reinforcement-learning-learning/internal/rl"

	// Register games for the menu
	_ "github.com/preich21/reinforcement-learning-learning/internal/games/flappy"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKeyToMenuActionWatch(t *testing.T) {
	km := NewKeyMapper()

	if got := km.MapKeyToMenuAction(keyMsg("a")); got != MenuActionWatch {
		t.Errorf("'a' should map to MenuActionWatch, got %v", got)
	}
	if got := km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyTab}); got != MenuActionScoreboard {
		t.Errorf("tab should map to MenuActionScoreboard, got %v", got)
	}
	if got := km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyEnter}); got != MenuActionSelect {
		t.Errorf("enter should map to MenuActionSelect, got %v", got)
	}
}

func TestMenuWatchSelection(t *testing.T) {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}
	m := NewMenuModel(nil, cfg)

	if len(m.items) == 0 {
		t.Fatal("menu should list registered games")
	}

	// 'a' selects the highlighted game for agent playback
	updated, _ := m.Update(keyMsg("a"))
	got, ok := updated.(MenuModel)
	if !ok {
		t.Fatalf("Update should return a MenuModel, got %T", updated)
	}

	if got.Selected() == nil {
		t.Fatal("watch key should select the highlighted game")
	}
	if !got.WantsWatch() {
		t.Error("watch key should mark the selection as agent playback")
	}

	// Enter selects for manual play, not watch
	m2 := NewMenuModel(nil, cfg)
	updated2, _ := m2.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got2 := updated2.(MenuModel)
	if got2.Selected() == nil {
		t.Fatal("enter should select the highlighted game")
	}
	if got2.WantsWatch() {
		t.Error("enter selection should not be marked as agent playback")
	}
}

// stubPolicy always picks the no-op action.
type stubPolicy struct{}

func (stubPolicy) SelectAction(obs []float64) int { return env.ActionNoOp }

func TestAgentModelBackToMenu(t *testing.T) {
	e := env.NewFlappy()
	var policy rl.Policy = stubPolicy{}

	m := NewAgentModel(e, policy, 60, 42)

	updated, _ := m.Update(keyMsg("b"))
	got, ok := updated.(AgentModel)
	if !ok {
		t.Fatalf("Update should return an AgentModel, got %T", updated)
	}

	if !got.BackToMenu() {
		t.Error("'b' should request a return to the menu")
	}
	if got.IsQuitting() {
		t.Error("returning to the menu should not count as quitting")
	}
}

func TestAgentModelStepsPolicy(t *testing.T) {
	e := env.NewFlappy()
	m := NewAgentModel(e, stubPolicy{}, 60, 42)

	updated, _ := m.Update(TickMsg(time.Now()))
	got := updated.(AgentModel)

	if len(got.obs) != e.ObservationSize() {
		t.Errorf("tick should refresh the observation, got length %d", len(got.obs))
	}
	if got.View() == "" {
		t.Error("agent view should render the game")
	}
}

func TestSessionWatchWithoutCheckpoint(t *testing.T) {
	// Point the checkpoint search at an empty home directory
	t.Setenv("HOME", t.TempDir())

	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}
	m := NewSessionModel(nil, cfg, "tester")

	updated, _ := m.startAgent("flappy")
	got, ok := updated.(SessionModel)
	if !ok {
		t.Fatalf("startAgent should return a SessionModel, got %T", updated)
	}

	if got.inAgent {
		t.Error("missing checkpoint should not enter agent playback")
	}
	if got.menu.status == "" {
		t.Error("missing checkpoint should surface a status message in the menu")
	}
}
