package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"matchsheet/internal/config"
	"matchsheet/internal/recorder"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "Path to the settings file")
	roster := flag.String("roster", "", `Tracked players in role order: "top jungle mid adc support"`)
	wait := flag.Bool("wait", false, "Wait for the League Client to start instead of failing")
	afterGame := flag.Bool("after-game", false, "Wait for the game in progress to end before recording")
	force := flag.Bool("force", false, "Append even if this game was already recorded")
	dump := flag.Bool("dump", false, "Write the normalized stats to <gameId>.json")
	linger := flag.Duration("linger", 0, "Pause before exiting, e.g. 10s")
	debug := flag.Bool("debug", false, "Enable debug logging")
	initConfig := flag.Bool("init", false, "Write a settings template to -config and exit")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *linger > 0 {
		defer time.Sleep(*linger)
	}

	if *initConfig {
		if err := config.SaveFile(*configPath, config.Template()); err != nil {
			log.WithError(err).Error("Failed to write settings template")
			return 1
		}
		fmt.Printf("Settings template written to %s\n", *configPath)
		return 0
	}

	settings, err := config.Load(*configPath, *roster)
	if err != nil {
		log.WithError(err).WithField("config", *configPath).Error("Failed to load settings")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := NewApp(settings, *force)
	defer app.close()

	if *wait {
		err = app.pollForLeagueClient(ctx)
	} else {
		err = app.connect(ctx)
	}
	if err != nil {
		log.WithError(err).Error(connectFailure(err))
		return 1
	}

	if *afterGame {
		if err := app.waitForEndOfGame(ctx); err != nil {
			log.WithError(err).Error("Stopped waiting for the game to end")
			return 1
		}
	}

	if err := app.loadChampions(ctx); err != nil {
		log.WithError(err).Error("Failed to load champion data")
		return 1
	}
	if err := app.openSink(ctx); err != nil {
		log.WithError(err).WithField("sink", settings.Sink).Error("Failed to open sink")
		return 1
	}

	res, err := app.record(ctx)
	app.printStats(res)

	if *dump && res != nil && res.Extraction != nil {
		if path, err := recorder.WriteDump(".", res); err != nil {
			log.WithError(err).Warn("Failed to write dump")
		} else {
			fmt.Printf("Stats written to %s\n", path)
		}
	}

	switch {
	case errors.Is(err, recorder.ErrAlreadyRecorded):
		fmt.Printf("Game %d is already in %s, nothing appended (use -force to append again)\n", res.GameID, settings.SheetName)
		return 0
	case err != nil:
		var stageErr *recorder.StageError
		if errors.As(err, &stageErr) {
			log.WithField("stage", stageErr.Stage).WithError(stageErr.Err).Error("Failed to record game")
		} else {
			log.WithError(err).Error("Failed to record game")
		}
		return 1
	}

	fmt.Printf("Game %d appended to %s\n", res.GameID, settings.SheetName)
	return 0
}
