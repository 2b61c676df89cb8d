package main

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"matchsheet/internal/champions"
	"matchsheet/internal/config"
	"matchsheet/internal/discord"
	"matchsheet/internal/lcu"
	"matchsheet/internal/ledger"
	"matchsheet/internal/recorder"
	"matchsheet/internal/sink"
)

// App holds everything one run needs
type App struct {
	settings  *config.Settings
	lcuClient *lcu.Client
	champions *champions.Catalog
	sink      sink.Sink
	ledger    *ledger.Ledger
	force     bool
}

// NewApp creates a new App for the given settings
func NewApp(settings *config.Settings, force bool) *App {
	return &App{
		settings: settings,
		force:    force,
	}
}

// loadChampions reads the configured champion file, or downloads the
// current champion.json from Data Dragon
func (a *App) loadChampions(ctx context.Context) error {
	var err error
	if a.settings.ChampionFile != "" {
		a.champions, err = champions.LoadFile(a.settings.ChampionFile)
	} else {
		a.champions, err = champions.Fetch(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load champions: %w", err)
	}

	log.WithFields(log.Fields{
		"champions": a.champions.Len(),
		"version":   a.champions.Version(),
	}).Debug("Loaded champion catalog")
	return nil
}

// openSink connects to the destination and loads the ledger
func (a *App) openSink(ctx context.Context) error {
	s, err := sink.Open(ctx, a.settings)
	if err != nil {
		return err
	}
	a.sink = s

	if a.settings.LedgerEnabled() {
		l, err := ledger.Open(a.settings.LedgerFile, a.destination())
		if err != nil {
			// the ledger only guards against duplicates, run without it
			log.WithError(err).Warn("Ignoring unreadable ledger")
		} else {
			a.ledger = l
		}
	}
	return nil
}

// destination identifies where rows go, so one ledger can serve several sinks
func (a *App) destination() string {
	s := a.settings
	switch s.Sink {
	case config.SinkSheets:
		workbook := s.WorkbookID
		if workbook == "" {
			workbook = s.WorkbookName
		}
		return strings.Join([]string{s.Sink, workbook, s.SheetName}, "/")
	default:
		return strings.Join([]string{s.Sink, s.SinkURL, s.SheetName}, "/")
	}
}

// record runs the pipeline for the latest game
func (a *App) record(ctx context.Context) (*recorder.Result, error) {
	opts := recorder.Options{Force: a.force}
	if a.ledger != nil {
		opts.Ledger = a.ledger
	}
	if a.settings.DiscordWebhook != "" {
		opts.Notifier = discord.NewWebhookClient(a.settings.DiscordWebhook)
	}

	r := recorder.New(a.settings, a.lcuClient, a.champions, a.sink, opts)
	return r.Run(ctx)
}

// close releases the sink
func (a *App) close() {
	if a.sink == nil {
		return
	}
	if err := a.sink.Close(); err != nil {
		log.WithError(err).Warn("Failed to close sink")
	}
}

// printStats writes the normalized records of a game to stdout as JSON
func (a *App) printStats(res *recorder.Result) {
	if res == nil || res.Extraction == nil {
		return
	}

	data, err := json.MarshalIndent(recorder.NewDump(res.Extraction), "", "  ")
	if err != nil {
		log.WithError(err).Warn("Failed to format stats")
		return
	}
	fmt.Println(string(data))
}
