package main

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"matchsheet/internal/lcu"
)

// connectInterval is how often -wait retries while the client is down
const connectInterval = 2 * time.Second

// connect reads the lockfile and checks the client answers
func (a *App) connect(ctx context.Context) error {
	path, err := lcu.LockfilePath(a.settings.LeagueInstall)
	if err != nil {
		return errors.Join(lcu.ErrSourceUnavailable, err)
	}

	creds, err := lcu.ParseLockfile(path)
	if err != nil {
		return err
	}

	client := lcu.NewClient(creds)
	if _, err := client.GameflowPhase(ctx); err != nil {
		return err
	}

	a.lcuClient = client
	log.WithField("port", creds.Port).Info("League Connected!")
	return nil
}

// pollForLeagueClient retries connect until the client is up or ctx ends.
// Authentication failures are returned at once since retrying cannot fix them.
func (a *App) pollForLeagueClient(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(connectInterval), 1)
	announced := false

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		err := a.connect(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, lcu.ErrSourceUnavailable) {
			return err
		}

		if !announced {
			log.Info("Waiting for League...")
			announced = true
		}
		log.WithError(err).Debug("League Client not reachable")
	}
}

// waitForEndOfGame blocks until the game in progress reaches the post-game screen
func (a *App) waitForEndOfGame(ctx context.Context) error {
	log.Info("Waiting for the game to end...")
	if err := a.lcuClient.WaitForEndOfGame(ctx); err != nil {
		return err
	}
	log.Info("Game over, recording")
	return nil
}

// connectFailure describes why connect failed, for the terminal error message
func connectFailure(err error) string {
	switch {
	case errors.Is(err, lcu.ErrAuthenticationFailed):
		return "League Client rejected the lockfile credentials, restart the client and try again"
	case errors.Is(err, lcu.ErrSourceUnavailable):
		return "Could not reach the League Client, is it running?"
	default:
		return "Failed to connect to the League Client"
	}
}
