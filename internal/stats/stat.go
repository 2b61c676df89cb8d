package stats

import (
	"fmt"
	"strings"
)

// Stat enumerates every value a player block can carry
type Stat int

const (
	Kills Stat = iota
	Deaths
	Assists
	TotalDamageDealtToChampions
	TotalDamageTaken
	WardsPlaced
	WardsKilled
	VisionWardsBoughtInGame
	GoldEarned
	TotalMinionsKilled
	NeutralMinionsKilled
	CreepScore

	numStats
)

// statNames are the LCU stat keys, and the column names for derived stats
var statNames = [numStats]string{
	Kills:                       "kills",
	Deaths:                      "deaths",
	Assists:                     "assists",
	TotalDamageDealtToChampions: "totalDamageDealtToChampions",
	TotalDamageTaken:            "totalDamageTaken",
	WardsPlaced:                 "wardsPlaced",
	WardsKilled:                 "wardsKilled",
	VisionWardsBoughtInGame:     "visionWardsBoughtInGame",
	GoldEarned:                  "goldEarned",
	TotalMinionsKilled:          "totalMinionsKilled",
	NeutralMinionsKilled:        "neutralMinionsKilled",
	CreepScore:                  "cs",
}

// DefaultTracked is the raw stat set recorded when none is configured
var DefaultTracked = []Stat{
	Kills,
	Deaths,
	Assists,
	TotalDamageDealtToChampions,
	TotalDamageTaken,
	WardsPlaced,
	WardsKilled,
	VisionWardsBoughtInGame,
	GoldEarned,
	TotalMinionsKilled,
	NeutralMinionsKilled,
}

func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statNames[s]
}

// Derived reports whether the stat is computed rather than read from the game
func (s Stat) Derived() bool {
	for _, rule := range DeriveRules {
		if rule.Target == s {
			return true
		}
	}
	return false
}

// ParseStat looks up a raw stat by its LCU key
func ParseStat(name string) (Stat, error) {
	for s := Stat(0); s < numStats; s++ {
		if statNames[s] == name {
			if s.Derived() {
				return 0, fmt.Errorf("stat %q is derived and cannot be tracked directly", name)
			}
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// ParseStats parses a list of LCU stat keys
func ParseStats(names []string) ([]Stat, error) {
	out := make([]Stat, 0, len(names))
	for _, name := range names {
		s, err := ParseStat(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
