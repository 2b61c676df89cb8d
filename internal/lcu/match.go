package lcu

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// MatchHistoryResponse represents the LCU match history response
type MatchHistoryResponse struct {
	Games struct {
		Games []struct {
			GameID *int64 `json:"gameId"`
		} `json:"games"`
	} `json:"games"`
}

// MatchSource is the full detail document of one completed game.
// Pointer fields are required and checked by Validate.
type MatchSource struct {
	GameID                *int64                `json:"gameId"`
	GameCreation          *int64                `json:"gameCreation"`
	GameDuration          *int64                `json:"gameDuration"`
	ParticipantIdentities []ParticipantIdentity `json:"participantIdentities"`
	Participants          []Participant         `json:"participants"`
	Teams                 []Team                `json:"teams"`
}

// ParticipantIdentity names the player behind a participant id
type ParticipantIdentity struct {
	ParticipantID int `json:"participantId"`
	Player        struct {
		SummonerName string `json:"summonerName"`
		GameName     string `json:"gameName"`
		TagLine      string `json:"tagLine"`
	} `json:"player"`
}

// Names returns the forms the player can be matched by. A bare gameName is
// only unique without a tagLine, so it is offered only in that case.
func (p ParticipantIdentity) Names() []string {
	var names []string
	if p.Player.SummonerName != "" {
		names = append(names, p.Player.SummonerName)
	}
	if p.Player.GameName != "" {
		if p.Player.TagLine != "" {
			names = append(names, p.Player.GameName+"#"+p.Player.TagLine)
		} else {
			names = append(names, p.Player.GameName)
		}
	}
	return names
}

// Participant is the raw per-player block of a game
type Participant struct {
	ParticipantID int                        `json:"participantId"`
	TeamID        *int                       `json:"teamId"`
	ChampionID    *int                       `json:"championId"`
	Stats         map[string]json.RawMessage `json:"stats"`
}

// Team is one side of the game
type Team struct {
	TeamID int     `json:"teamId"`
	Win    WinFlag `json:"win"`
}

// WinFlag holds the raw team result. The LCU sends "Win"/"Fail";
// boolean payloads are read as "Win" for true and "Fail" for false.
// Any other value is kept verbatim and reads as a loss.
type WinFlag string

func (w *WinFlag) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "true":
		*w = "Win"
	case "false":
		*w = "Fail"
	case "null":
		*w = ""
	default:
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*w = WinFlag(s)
			return nil
		}
		*w = WinFlag(str)
	}
	return nil
}

// Validate checks the fields every game document must carry
func (m *MatchSource) Validate() error {
	switch {
	case m.GameID == nil:
		return fmt.Errorf("%w: missing gameId", ErrMalformedSource)
	case m.GameCreation == nil:
		return fmt.Errorf("%w: missing gameCreation", ErrMalformedSource)
	case m.GameDuration == nil:
		return fmt.Errorf("%w: missing gameDuration", ErrMalformedSource)
	case m.ParticipantIdentities == nil:
		return fmt.Errorf("%w: missing participantIdentities", ErrMalformedSource)
	case m.Participants == nil:
		return fmt.Errorf("%w: missing participants", ErrMalformedSource)
	case m.Teams == nil:
		return fmt.Errorf("%w: missing teams", ErrMalformedSource)
	}
	return nil
}

// Participant finds the stat block for a participant id. Falls back to
// positional lookup, which is how the participant list is ordered.
func (m *MatchSource) Participant(id int) (*Participant, int, error) {
	for i := range m.Participants {
		if m.Participants[i].ParticipantID == id {
			return &m.Participants[i], i, nil
		}
	}
	if id >= 1 && id <= len(m.Participants) {
		return &m.Participants[id-1], id - 1, nil
	}
	return nil, -1, fmt.Errorf("%w: no participant with participantId %d", ErrMalformedSource, id)
}

// Team finds the team record for a team id
func (m *MatchSource) Team(id int) (*Team, error) {
	for i := range m.Teams {
		if m.Teams[i].TeamID == id {
			return &m.Teams[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no team with teamId %d", ErrMalformedSource, id)
}

// LatestGameID returns the id of the current summoner's most recent game
func (c *Client) LatestGameID(ctx context.Context) (int64, error) {
	body, err := c.Get(ctx, "/lol-match-history/v1/products/lol/current-summoner/matches?begIndex=0&endIndex=0")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch match history: %w", err)
	}

	var history MatchHistoryResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return 0, fmt.Errorf("%w: failed to parse match history: %w", ErrMalformedSource, err)
	}
	if len(history.Games.Games) == 0 {
		return 0, fmt.Errorf("%w: match history is empty", ErrMalformedSource)
	}
	if history.Games.Games[0].GameID == nil {
		return 0, fmt.Errorf("%w: missing games.games[0].gameId", ErrMalformedSource)
	}

	return *history.Games.Games[0].GameID, nil
}

// Game fetches the full detail of a game
func (c *Client) Game(ctx context.Context, gameID int64) (*MatchSource, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/lol-match-history/v1/games/%d", gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game %d: %w", gameID, err)
	}
	return ParseMatchSource(body)
}

// ParseMatchSource decodes and validates a game detail document
func ParseMatchSource(data []byte) (*MatchSource, error) {
	var match MatchSource
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, fmt.Errorf("%w: failed to parse game: %w", ErrMalformedSource, err)
	}
	if err := match.Validate(); err != nil {
		return nil, err
	}
	return &match, nil
}
