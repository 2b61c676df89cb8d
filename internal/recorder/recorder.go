// Package recorder runs one fetch, extract, normalize, project and append
// pass for the most recent game.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"matchsheet/internal/config"
	"matchsheet/internal/lcu"
	"matchsheet/internal/sink"
	"matchsheet/internal/stats"
)

// ErrAlreadyRecorded means the ledger has seen the latest game
var ErrAlreadyRecorded = errors.New("game already recorded")

// Stage names the pipeline step an error came from
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageProject   Stage = "project"
	StageAppend    Stage = "append"
)

// StageError wraps a pipeline failure with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Source provides the game to record
type Source interface {
	LatestGameID(ctx context.Context) (int64, error)
	Game(ctx context.Context, gameID int64) (*lcu.MatchSource, error)
}

// Ledger remembers appended games
type Ledger interface {
	Seen(gameID int64) bool
	Mark(gameID int64)
	Save() error
}

// Notifier announces an appended game
type Notifier interface {
	SendMatch(ctx context.Context, roster stats.Roster, x *stats.Extraction) error
}

// Options are the optional collaborators of a Recorder
type Options struct {
	Ledger   Ledger
	Notifier Notifier
	// Force appends even when the ledger has seen the game
	Force bool
}

// Recorder appends the latest game of the current summoner to a sink
type Recorder struct {
	source     Source
	sink       sink.Sink
	normalizer *stats.Normalizer
	roster     stats.Roster
	layout     *stats.Layout
	opts       Options
}

// Result is what a run produced, up to the stage it reached
type Result struct {
	GameID     int64
	Extraction *stats.Extraction
	Row        stats.Row
	Appended   bool
}

// New creates a Recorder from the run settings
func New(s *config.Settings, source Source, champions stats.ChampionNamer, out sink.Sink, opts Options) *Recorder {
	return &Recorder{
		source:     source,
		sink:       out,
		normalizer: stats.NewNormalizer(champions, s.Layout, s.Location),
		roster:     s.Roster,
		layout:     s.Layout,
		opts:       opts,
	}
}

// Run records the latest game. Nothing is written unless every stage
// before append succeeds.
func (r *Recorder) Run(ctx context.Context) (*Result, error) {
	gameID, err := r.source.LatestGameID(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}
	log.WithField("gameId", gameID).Debug("Latest game")

	match, err := r.source.Game(ctx, gameID)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}
	res := &Result{GameID: gameID}

	x, err := stats.Extract(match, r.roster, r.layout)
	if err != nil {
		return res, &StageError{Stage: StageExtract, Err: err}
	}
	res.Extraction = x

	for _, m := range x.Missing {
		entry := log.WithFields(log.Fields{"player": m.Name, "role": m.Role.String()})
		if m.Closest != "" {
			entry = entry.WithField("closest", m.Closest)
		}
		entry.Info("Player not found in game")
	}
	if !x.Game.Determined() {
		log.WithField("gameId", gameID).Warn("No tracked player in game, recording as undefined/Draw")
	}

	if err := r.normalizer.Normalize(x); err != nil {
		return res, &StageError{Stage: StageNormalize, Err: err}
	}

	row, err := stats.Project(r.roster, x, r.layout)
	if err != nil {
		return res, &StageError{Stage: StageProject, Err: err}
	}
	res.Row = row

	if r.opts.Ledger != nil && r.opts.Ledger.Seen(gameID) {
		if !r.opts.Force {
			return res, ErrAlreadyRecorded
		}
		log.WithField("gameId", gameID).Info("Game already recorded, appending anyway")
	}

	if err := r.sink.Append(ctx, gameID, row); err != nil {
		return res, &StageError{Stage: StageAppend, Err: err}
	}
	res.Appended = true

	if r.opts.Ledger != nil {
		r.opts.Ledger.Mark(gameID)
		if err := r.opts.Ledger.Save(); err != nil {
			log.WithError(err).Warn("Failed to save ledger")
		}
	}

	if r.opts.Notifier != nil {
		if err := r.opts.Notifier.SendMatch(ctx, r.roster, x); err != nil {
			log.WithError(err).Warn("Failed to send Discord notification")
		}
	}

	return res, nil
}

// Dump is the normalized records of a game, keyed by player name
type Dump struct {
	Game    map[string]interface{}            `json:"game"`
	Players map[string]map[string]interface{} `json:"players"`
}

// NewDump collects the normalized records of a result
func NewDump(x *stats.Extraction) *Dump {
	d := &Dump{
		Game:    x.Game.Fields(),
		Players: make(map[string]map[string]interface{}, len(x.Players)),
	}
	for name, p := range x.Players {
		d.Players[name] = p.Fields()
	}
	return d
}

// WriteDump writes <gameId>.json into dir and returns its path
func WriteDump(dir string, res *Result) (string, error) {
	if res == nil || res.Extraction == nil {
		return "", fmt.Errorf("nothing to dump")
	}

	data, err := json.MarshalIndent(NewDump(res.Extraction), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal dump: %w", err)
	}

	path := filepath.Join(dir, strconv.FormatInt(res.GameID, 10)+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write dump: %w", err)
	}
	return path, nil
}
