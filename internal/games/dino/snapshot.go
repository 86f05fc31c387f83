package dino

// CactusSnapshot captures the position of a single obstacle.
type CactusSnapshot struct {
	X      int
	Width  int
	Height int
}

// Snapshot captures the complete game state for determinism testing and
// observation encoding.
type Snapshot struct {
	Tick       int
	PlayerX    int
	PlayerY    float64 // Relative to ground, negative = airborne
	PlayerVel  float64
	IsGrounded bool
	Score      int
	GameOver   bool
	Paused     bool
	ScreenW    int
	ScreenH    int
	GroundY    int
	Cacti      []CactusSnapshot
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	cacti := g.obstacles.Cacti()
	cs := make([]CactusSnapshot, len(cacti))
	for i, c := range cacti {
		cs[i] = CactusSnapshot{X: c.X, Width: c.Width, Height: c.Height}
	}
	return Snapshot{
		Tick:       g.tickCount,
		PlayerX:    g.cfg.Player.X,
		PlayerY:    g.playerY,
		PlayerVel:  g.playerVel,
		IsGrounded: g.isGrounded,
		Score:      g.score,
		GameOver:   g.gameOver,
		Paused:     g.paused,
		ScreenW:    g.runtime.ScreenW,
		ScreenH:    g.runtime.ScreenH,
		GroundY:    g.groundY,
		Cacti:      cs,
	}
}
