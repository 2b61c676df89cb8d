package stats

import (
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"matchsheet/internal/lcu"
)

// Extraction is the raw result of walking one game for the roster
type Extraction struct {
	// Players is keyed by roster name. Roster players that were not in the
	// game have no entry; see Missing.
	Players map[string]*PlayerRecord
	Game    *GameRecord
	Missing []MissingPlayer
}

// MissingPlayer is a roster slot whose player was not in the game
type MissingPlayer struct {
	Name string
	Role Role
	// Closest is the participant name nearest to Name, if any looked similar
	Closest string
}

// Extract selects the roster's participants from a game and copies the
// tracked stats out of it.
//
// Side and raw outcome are taken from the team of the last roster player
// encountered in participantIdentities order. All tracked players are
// expected to share a team; if they do not, the last one decides.
func Extract(match *lcu.MatchSource, roster Roster, layout *Layout) (*Extraction, error) {
	if err := match.Validate(); err != nil {
		return nil, err
	}

	game := &GameRecord{
		GameID:          *match.GameID,
		Side:            SideUndetermined,
		Outcome:         Draw,
		CreatedAt:       time.UnixMilli(*match.GameCreation).UTC(),
		DurationSeconds: *match.GameDuration,
	}
	players := make(map[string]*PlayerRecord)
	var participantNames []string

	for _, identity := range match.ParticipantIdentities {
		names := identity.Names()
		participantNames = append(participantNames, names...)

		name, role, ok := roster.match(names)
		if !ok {
			continue
		}
		if prev, dup := players[name]; dup {
			return nil, fmt.Errorf("%w: roster player %q matches participants %d and %d",
				lcu.ErrMalformedSource, name, prev.ParticipantID, identity.ParticipantID)
		}

		participant, idx, err := match.Participant(identity.ParticipantID)
		if err != nil {
			return nil, err
		}

		record, err := extractPlayer(participant, idx, layout)
		if err != nil {
			return nil, err
		}
		record.Name = name
		record.Role = role
		record.ParticipantID = identity.ParticipantID
		players[name] = record

		team, err := match.Team(record.TeamID)
		if err != nil {
			return nil, err
		}
		game.Side = sideFor(record.TeamID)
		game.RawWin = string(team.Win)
		game.determined = true
	}

	var missing []MissingPlayer
	for role, name := range roster {
		if _, ok := players[name]; ok {
			continue
		}
		missing = append(missing, MissingPlayer{
			Name:    name,
			Role:    Role(role),
			Closest: closestName(name, participantNames),
		})
	}

	return &Extraction{Players: players, Game: game, Missing: missing}, nil
}

func extractPlayer(p *lcu.Participant, idx int, layout *Layout) (*PlayerRecord, error) {
	if p.ChampionID == nil {
		return nil, fmt.Errorf("%w: missing participants[%d].championId", lcu.ErrMalformedSource, idx)
	}
	if p.TeamID == nil {
		return nil, fmt.Errorf("%w: missing participants[%d].teamId", lcu.ErrMalformedSource, idx)
	}
	if p.Stats == nil {
		return nil, fmt.Errorf("%w: missing participants[%d].stats", lcu.ErrMalformedSource, idx)
	}

	record := &PlayerRecord{
		TeamID:     *p.TeamID,
		ChampionID: *p.ChampionID,
	}
	for _, s := range layout.tracked {
		raw, ok := p.Stats[s.String()]
		if !ok {
			return nil, fmt.Errorf("%w: missing participants[%d].stats.%s", lcu.ErrMalformedSource, idx, s)
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: participants[%d].stats.%s is not a number: %s", lcu.ErrMalformedSource, idx, s, raw)
		}
		v, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: participants[%d].stats.%s is not an integer: %s", lcu.ErrMalformedSource, idx, s, n)
		}
		record.set(s, v)
	}

	return record, nil
}

// closestName suggests which participant a missing roster name may have meant
func closestName(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	if ranks := fuzzy.RankFindFold(name, candidates); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", len(name)/2+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
