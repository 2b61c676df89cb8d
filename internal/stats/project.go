package stats

import (
	"fmt"
	"sort"
)

// Row is one flat line of cells handed to a sink. Cells are strings,
// int64 stat values or the float64 duration.
type Row []interface{}

// Project lays out a normalized extraction as a single row: the game
// columns, then one block per role in roster order. Roles whose player was
// not in the game get a block of empty strings.
func Project(roster Roster, x *Extraction, layout *Layout) (Row, error) {
	if !x.Game.normalized {
		return nil, fmt.Errorf("game record is not normalized")
	}

	row := make(Row, 0, layout.RowWidth())
	row = append(row,
		x.Game.Date,
		x.Game.Time,
		string(x.Game.Side),
		string(x.Game.Outcome),
		x.Game.DurationMinutes,
	)

	for _, name := range roster {
		p, ok := x.Players[name]
		if !ok {
			for i := 0; i < layout.BlockWidth(); i++ {
				row = append(row, "")
			}
			continue
		}
		if !p.normalized {
			return nil, fmt.Errorf("record for %q is not normalized", name)
		}

		row = append(row, p.Champion)
		for _, s := range layout.display {
			v, ok := p.Stat(s)
			if !ok {
				return nil, errMissingStat(p, s)
			}
			row = append(row, v)
		}
	}

	return row, nil
}

func sortedNames(players map[string]*PlayerRecord) []string {
	names := make([]string, 0, len(players))
	for name := range players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
