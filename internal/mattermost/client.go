// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

const defaultColor = "#1E90FF"

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   cfg.Username,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Pretext  string  `json:"pretext,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	ThumbURL string  `json:"thumb_url,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Digest is the content of the daily standings message.
type Digest struct {
	Teams        []models.Team
	TotalTeams   int64
	TotalScores  int64
	TotalPoints  int64
	AverageScore float64
}

// Enabled reports whether messages are actually delivered.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = c.username
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// SendLeaderChange announces a new rank 1 team. previous is nil when the board had no leader.
func (c *Client) SendLeaderChange(ctx context.Context, previous, current *models.Team) error {
	if current == nil {
		return nil
	}

	text := fmt.Sprintf("🏆 **%s** (%s) takes the lead with **%d** points!", current.Name, current.Code, current.TotalScore)
	if previous != nil {
		text += fmt.Sprintf("\n_%s drops from first place with %d points._", previous.Name, previous.TotalScore)
	}

	attachment := Attachment{
		Fallback: fmt.Sprintf("%s takes the lead", current.Name),
		Color:    teamColor(current),
		Text:     text,
	}
	if current.LogoURL != nil {
		attachment.ThumbURL = *current.LogoURL
	}

	return c.SendMessage(ctx, &Message{Attachments: []Attachment{attachment}})
}

// SendStandingsDigest posts the current standings.
func (c *Client) SendStandingsDigest(ctx context.Context, digest *Digest) error {
	if len(digest.Teams) == 0 {
		c.log.Debug().Msg("No active teams, skipping standings digest")
		return nil
	}

	var b strings.Builder
	b.WriteString("### 📊 Daily Standings\n\n")
	b.WriteString("| Rank | Team | Points |\n|:----:|:-----|-------:|\n")
	for _, t := range digest.Teams {
		fmt.Fprintf(&b, "| %s | %s (%s) | %d |\n", rankLabel(t.Rank), t.Name, t.Code, t.TotalScore)
	}

	return c.SendMessage(ctx, &Message{
		Text: b.String(),
		Attachments: []Attachment{{
			Fallback: "Leaderboard statistics",
			Color:    defaultColor,
			Fields: []Field{
				{Short: true, Title: "Teams", Value: fmt.Sprintf("%d", digest.TotalTeams)},
				{Short: true, Title: "Scores", Value: fmt.Sprintf("%d", digest.TotalScores)},
				{Short: true, Title: "Total points", Value: fmt.Sprintf("%d", digest.TotalPoints)},
				{Short: true, Title: "Average", Value: fmt.Sprintf("%.2f", digest.AverageScore)},
			},
		}},
	})
}

func rankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

func teamColor(t *models.Team) string {
	if t.Color != nil && *t.Color != "" {
		return *t.Color
	}
	return defaultColor
}
