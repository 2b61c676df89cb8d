package stats

import (
	"fmt"
	"math"
	"time"
)

const (
	dateLayout = "02-01-2006"
	timeLayout = "15:04"

	// rawWin is the only team flag that counts as a win
	rawWin = "Win"
)

// ChampionNamer resolves champion ids to display names
type ChampionNamer interface {
	Name(id int) (string, error)
}

// Normalizer turns extracted records into display values
type Normalizer struct {
	champions ChampionNamer
	layout    *Layout
	location  *time.Location
}

// NewNormalizer creates a normalizer rendering timestamps in loc
func NewNormalizer(champions ChampionNamer, layout *Layout, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{champions: champions, layout: layout, location: loc}
}

// Normalize normalizes every player record and the game record
func (n *Normalizer) Normalize(x *Extraction) error {
	for _, name := range sortedNames(x.Players) {
		if err := n.NormalizePlayer(x.Players[name]); err != nil {
			return err
		}
	}
	n.NormalizeGame(x.Game)
	return nil
}

// NormalizePlayer resolves the champion name and folds derived stats.
// It does nothing for a record that is already normalized.
func (n *Normalizer) NormalizePlayer(p *PlayerRecord) error {
	if p.normalized {
		return nil
	}

	champion, err := n.champions.Name(p.ChampionID)
	if err != nil {
		return fmt.Errorf("player %q: %w", p.Name, err)
	}

	// Check every source before folding so a failure leaves p untouched
	for _, rule := range n.layout.rules {
		for _, s := range rule.sources {
			if _, ok := p.Stat(s); !ok {
				return errMissingStat(p, s)
			}
		}
	}
	for _, rule := range n.layout.rules {
		if err := rule.apply(p); err != nil {
			return err
		}
	}

	p.Champion = champion
	p.normalized = true
	return nil
}

// NormalizeGame renders date, time and duration and maps the raw win flag.
// A game with no tracked player keeps the Draw outcome.
func (n *Normalizer) NormalizeGame(g *GameRecord) {
	local := g.CreatedAt.In(n.location)
	g.Date = local.Format(dateLayout)
	g.Time = local.Format(timeLayout)
	g.DurationMinutes = math.Round(float64(g.DurationSeconds)/60*100) / 100

	switch {
	case !g.determined:
		g.Side = SideUndetermined
		g.Outcome = Draw
	case g.RawWin == rawWin:
		g.Outcome = Victory
	default:
		g.Outcome = Defeat
	}
	g.normalized = true
}
