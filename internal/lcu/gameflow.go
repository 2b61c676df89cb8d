package lcu

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// EventType represents LCU WebSocket event types
type EventType int

const (
	EventTypeSubscribe   EventType = 5
	EventTypeUnsubscribe EventType = 6
	EventTypeEvent       EventType = 8
)

const (
	gameflowEvent = "OnJsonApiEvent_lol-gameflow_v1_gameflow-phase"

	// PhaseEndOfGame is reported once the post-game screen is up and
	// match history carries the finished game.
	PhaseEndOfGame = "EndOfGame"
)

// GameflowPhase returns the current gameflow phase
func (c *Client) GameflowPhase(ctx context.Context) (string, error) {
	body, err := c.Get(ctx, "/lol-gameflow/v1/gameflow-phase")
	if err != nil {
		return "", err
	}

	var phase string
	if err := json.Unmarshal(body, &phase); err != nil {
		return "", fmt.Errorf("%w: failed to parse gameflow phase: %w", ErrMalformedSource, err)
	}
	return phase, nil
}

// WaitForEndOfGame blocks until the client reports the EndOfGame phase.
// The current phase is checked first so an already finished game returns at once.
func (c *Client) WaitForEndOfGame(ctx context.Context) error {
	if phase, err := c.GameflowPhase(ctx); err == nil && phase == PhaseEndOfGame {
		return nil
	}

	wsURL := "wss://" + strings.TrimPrefix(c.baseURL, "https://")
	return waitForPhase(ctx, wsURL, c.authHeader, PhaseEndOfGame)
}

func waitForPhase(ctx context.Context, url, authHeader, want string) error {
	dialer := websocket.Dialer{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}

	header := http.Header{}
	header.Set("Authorization", authHeader)

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: websocket handshake returned %d", ErrAuthenticationFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: failed to connect to LCU WebSocket: %w", ErrSourceUnavailable, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON([]interface{}{EventTypeSubscribe, gameflowEvent}); err != nil {
		return fmt.Errorf("failed to subscribe to gameflow: %w", err)
	}

	// ReadMessage does not observe ctx, closing the conn unblocks it
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: gameflow websocket closed: %w", ErrSourceUnavailable, err)
		}

		if phase, ok := parsePhaseEvent(message); ok && phase == want {
			return nil
		}
	}
}

// parsePhaseEvent extracts the phase from a [8, event, payload] frame
func parsePhaseEvent(data []byte) (string, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) < 3 {
		return "", false
	}

	var eventType EventType
	if err := json.Unmarshal(raw[0], &eventType); err != nil || eventType != EventTypeEvent {
		return "", false
	}

	var eventName string
	if err := json.Unmarshal(raw[1], &eventName); err != nil || eventName != gameflowEvent {
		return "", false
	}

	var payload struct {
		EventType string `json:"eventType"`
		Data      string `json:"data"`
	}
	if err := json.Unmarshal(raw[2], &payload); err != nil {
		return "", false
	}
	if payload.EventType == "Delete" {
		return "", false
	}
	return payload.Data, true
}
