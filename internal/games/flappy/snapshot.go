package flappy

// PipeSnapshot captures the position of a single pipe.
type PipeSnapshot struct {
	X         int
	GapY      int
	GapHeight int
}

// Snapshot captures the complete game state for determinism testing and
// observation encoding.
type Snapshot struct {
	Tick      int
	PlayerX   int
	PlayerY   float64
	PlayerVel float64
	Score     int
	GameOver  bool
	Paused    bool
	ScreenW   int
	ScreenH   int
	Pipes     []PipeSnapshot
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	pipes := g.pipes.Pipes()
	ps := make([]PipeSnapshot, len(pipes))
	for i, p := range pipes {
		ps[i] = PipeSnapshot{X: p.X, GapY: p.GapY, GapHeight: p.GapHeight}
	}
	return Snapshot{
		Tick:      g.tickCount,
		PlayerX:   g.cfg.Player.X,
		PlayerY:   g.playerY,
		PlayerVel: g.playerVel,
		Score:     g.score,
		GameOver:  g.gameOver,
		Paused:    g.paused,
		ScreenW:   g.runtime.ScreenW,
		ScreenH:   g.runtime.ScreenH,
		Pipes:     ps,
	}
}
