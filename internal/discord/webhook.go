// Package discord posts recorded match summaries to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	json "github.com/goccy/go-json"

	"matchsheet/internal/stats"
)

const (
	// Colors for Discord embeds
	colorRed   = 15158332 // 0xE74C3C - defeat
	colorGreen = 5763719  // 0x57F287 - victory
	colorGrey  = 9807270  // 0x95A5A6 - undetermined

	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// NewMatchPayload builds a one-embed summary of a recorded game
func NewMatchPayload(roster stats.Roster, x *stats.Extraction) *discordgo.WebhookParams {
	g := x.Game

	color := colorGrey
	switch g.Outcome {
	case stats.Victory:
		color = colorGreen
	case stats.Defeat:
		color = colorRed
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%s side)", g.Outcome, g.Side),
		Description: fmt.Sprintf("%s %s, %.2f min", g.Date, g.Time, g.DurationMinutes),
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Game %d", g.GameID),
		},
	}
	if !g.CreatedAt.IsZero() {
		embed.Timestamp = g.CreatedAt.UTC().Format(time.RFC3339)
	}

	for role, name := range roster {
		p, ok := x.Players[name]
		if !ok {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s: %s", stats.Role(role), name),
			Value:  statLine(p),
			Inline: true,
		})
	}

	return &discordgo.WebhookParams{
		Username: "matchsheet",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}

// statLine formats "Annie 7/2/9 128cs", leaving out stats that are not tracked
func statLine(p *stats.PlayerRecord) string {
	parts := []string{p.Champion}

	var kda []string
	for _, s := range []stats.Stat{stats.Kills, stats.Deaths, stats.Assists} {
		if v, ok := p.Stat(s); ok {
			kda = append(kda, strconv.FormatInt(v, 10))
		}
	}
	if len(kda) > 0 {
		parts = append(parts, strings.Join(kda, "/"))
	}
	if cs, ok := p.Stat(stats.CreepScore); ok {
		parts = append(parts, fmt.Sprintf("%dcs", cs))
	}
	return strings.Join(parts, " ")
}

// WebhookClient sends notifications to Discord webhooks
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// SendMatch posts the summary of a recorded game
func (c *WebhookClient) SendMatch(ctx context.Context, roster stats.Roster, x *stats.Extraction) error {
	return c.sendPayload(ctx, NewMatchPayload(roster, x))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookClient) sendPayload(ctx context.Context, payload *discordgo.WebhookParams) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Discord returns 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter(resp.Header.Get("Retry-After"))):
				continue
			}
		}

		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// retryAfter parses Retry-After seconds, which Discord may send as a decimal
func retryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}
