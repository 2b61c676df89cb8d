package stats

import (
	"fmt"
	"time"

	"matchsheet/internal/lcu"
)

// Side is the team a tracked player was on
type Side string

const (
	SideBlue Side = "Blue"
	SideRed  Side = "Red"
	// SideUndetermined is used when no tracked player was in the game
	SideUndetermined Side = "undefined"
)

// Outcome is the displayed game result
type Outcome string

const (
	Victory Outcome = "Victory"
	Defeat  Outcome = "Defeat"
	// Draw is used when no tracked player was in the game
	Draw Outcome = "Draw"
)

// TeamIDBlue is the LCU team id of the blue side
const TeamIDBlue = 100

func sideFor(teamID int) Side {
	if teamID == TeamIDBlue {
		return SideBlue
	}
	return SideRed
}

// PlayerRecord is the stat line of one tracked player in one game
type PlayerRecord struct {
	Name          string
	Role          Role
	ParticipantID int
	TeamID        int
	ChampionID    int
	// Champion is empty until the record is normalized
	Champion string

	values     [numStats]int64
	present    [numStats]bool
	normalized bool
}

// Stat returns a stat value and whether the record carries it
func (p *PlayerRecord) Stat(s Stat) (int64, bool) {
	if s < 0 || s >= numStats || !p.present[s] {
		return 0, false
	}
	return p.values[s], true
}

// Normalized reports whether champion resolution and stat folding have run
func (p *PlayerRecord) Normalized() bool {
	return p.normalized
}

func (p *PlayerRecord) set(s Stat, v int64) {
	p.values[s] = v
	p.present[s] = true
}

func (p *PlayerRecord) clear(s Stat) {
	p.values[s] = 0
	p.present[s] = false
}

// Fields returns the record as a flat name -> value map, for dumps
func (p *PlayerRecord) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"role":       p.Role.String(),
		"championId": p.ChampionID,
	}
	if p.Champion != "" {
		fields["champion"] = p.Champion
	}
	for s := Stat(0); s < numStats; s++ {
		if p.present[s] {
			fields[s.String()] = p.values[s]
		}
	}
	return fields
}

func errMissingStat(p *PlayerRecord, s Stat) error {
	return fmt.Errorf("%w: player %q has no %s", lcu.ErrMalformedSource, p.Name, s)
}

// GameRecord holds the game-level fields of a row
type GameRecord struct {
	GameID          int64
	Side            Side
	RawWin          string
	Outcome         Outcome
	CreatedAt       time.Time
	DurationSeconds int64

	// Set by normalization
	DurationMinutes float64
	Date            string
	Time            string

	determined bool
	normalized bool
}

// Determined reports whether any tracked player was found, so that Side and
// Outcome come from the game rather than the undetermined sentinels.
func (g *GameRecord) Determined() bool {
	return g.determined
}

// Normalized reports whether date, time, duration and outcome are final
func (g *GameRecord) Normalized() bool {
	return g.normalized
}

// Fields returns the record as a flat name -> value map, for dumps
func (g *GameRecord) Fields() map[string]interface{} {
	return map[string]interface{}{
		"gameId":   g.GameID,
		"side":     string(g.Side),
		"outcome":  string(g.Outcome),
		"gameTime": g.DurationMinutes,
		"date":     g.Date,
		"start":    g.Time,
	}
}
