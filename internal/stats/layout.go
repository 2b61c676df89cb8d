package stats

import (
	"fmt"
)

// GameColumns is the number of game-level cells leading every row:
// date, time, side, outcome, duration.
const GameColumns = 5

var gameHeader = [GameColumns]string{"date", "time", "side", "outcome", "duration"}

// Layout fixes which raw stats are read and which columns each player block has.
// It is built once from configuration and shared read-only by every stage.
type Layout struct {
	tracked    []Stat
	trackedSet [numStats]bool
	rules      []boundRule
	display    []Stat
}

// NewLayout builds a layout for the given raw stats in display order.
// A derived stat takes the column of the first of its tracked sources.
func NewLayout(tracked []Stat) (*Layout, error) {
	if len(tracked) == 0 {
		return nil, fmt.Errorf("no stats tracked")
	}

	l := &Layout{tracked: append([]Stat(nil), tracked...)}
	for _, s := range tracked {
		if s < 0 || s >= numStats {
			return nil, fmt.Errorf("invalid stat %d", int(s))
		}
		if s.Derived() {
			return nil, fmt.Errorf("stat %q is derived and cannot be tracked directly", s)
		}
		if l.trackedSet[s] {
			return nil, fmt.Errorf("stat %q tracked twice", s)
		}
		l.trackedSet[s] = true
	}
	l.rules = bindRules(DeriveRules, l.trackedSet)

	folded := map[Stat]*boundRule{}
	for i := range l.rules {
		for _, s := range l.rules[i].sources {
			folded[s] = &l.rules[i]
		}
	}
	placed := map[Stat]bool{}
	for _, s := range tracked {
		rule, ok := folded[s]
		if !ok {
			l.display = append(l.display, s)
			continue
		}
		if !placed[rule.target] {
			l.display = append(l.display, rule.target)
			placed[rule.target] = true
		}
	}

	return l, nil
}

// DefaultLayout tracks DefaultTracked
func DefaultLayout() *Layout {
	l, err := NewLayout(DefaultTracked)
	if err != nil {
		panic(err)
	}
	return l
}

// Tracked returns the raw stats read from each participant
func (l *Layout) Tracked() []Stat {
	return append([]Stat(nil), l.tracked...)
}

// Display returns the stat columns of a player block, after the champion column
func (l *Layout) Display() []Stat {
	return append([]Stat(nil), l.display...)
}

// BlockWidth is the number of cells per roster slot, champion included
func (l *Layout) BlockWidth() int {
	return 1 + len(l.display)
}

// RowWidth is the fixed width of every projected row
func (l *Layout) RowWidth() int {
	return GameColumns + int(NumRoles)*l.BlockWidth()
}

// Header names every column of a projected row
func (l *Layout) Header() []string {
	header := make([]string, 0, l.RowWidth())
	header = append(header, gameHeader[:]...)
	for role := Role(0); role < NumRoles; role++ {
		header = append(header, role.String()+"_champion")
		for _, s := range l.display {
			header = append(header, role.String()+"_"+s.String())
		}
	}
	return header
}
