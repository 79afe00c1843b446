package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
)

const (
	colorGreen  = 0x2ECC71 // discount 50%+
	colorYellow = 0xF1C40F // discount 30-49%
	colorOrange = 0xE67E22 // below 30%

	maxEmbeds = 10
)

var wonPrinter = message.NewPrinter(language.Korean)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendAlert sends a single alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *DealAlert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

// SendBatchAlert sends multiple alerts as a single Discord message.
func (d *DiscordNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []DealAlert,
	title string,
) error {
	if len(alerts) == 0 {
		return nil
	}

	// Discord allows max 10 embeds per message.
	limit := min(len(alerts), maxEmbeds)
	embeds := make([]discordEmbed, 0, limit+1)
	for i := range limit {
		embeds = append(embeds, buildEmbed(&alerts[i]))
	}

	if len(alerts) > maxEmbeds {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more %s", len(alerts)-maxEmbeds, title),
			Color:       colorYellow,
			Description: "See the run output for the full list.",
		})
	}

	payload := discordWebhookPayload{
		Content: fmt.Sprintf("%s (%d)", title, len(alerts)),
		Embeds:  embeds,
	}
	return d.post(ctx, payload)
}

func buildEmbed(alert *DealAlert) discordEmbed {
	p := alert.Product
	embed := discordEmbed{
		Title: fmt.Sprintf("All-time low: %s", p.Name),
		URL:   p.ProductURL,
		Color: discountColor(p.DiscountRate),
		Fields: []discordEmbedField{
			{Name: "Discount", Value: fmt.Sprintf("%d%%", p.DiscountRate), Inline: true},
			{Name: "Price", Value: FormatWon(p.SalePrice), Inline: true},
			{Name: "Original", Value: FormatWon(p.OriginalPrice), Inline: true},
			{Name: "Category", Value: alert.Category, Inline: true},
		},
	}

	if alert.PreviousLow > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Previous Low", Value: FormatWon(alert.PreviousLow), Inline: true,
		})
	} else {
		embed.Description = "First time seen."
	}
	if p.IsRocket {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Delivery", Value: "Rocket", Inline: true,
		})
	}
	if p.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: p.ImageURL}
	}

	return embed
}

// FormatWon renders a price with thousands separators, e.g. "12,900원".
func FormatWon(price int64) string {
	return wonPrinter.Sprintf("%d원", price)
}

func discountColor(rate int) int {
	switch {
	case rate >= 50:
		return colorGreen
	case rate >= 30:
		return colorYellow
	default:
		return colorOrange
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
