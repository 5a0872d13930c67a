package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const embedColor = 0x4caf50

// Webhook posts a Discord-compatible embed describing each transaction.
type Webhook struct {
	url    string
	client *http.Client
}

var _ Notifier = (*Webhook)(nil)

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type embedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Author      embedAuthor  `json:"author"`
	Fields      []embedField `json:"fields"`
}

type embedAuthor struct {
	Name string `json:"name"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

func (w *Webhook) TransactionCreated(ctx context.Context, d Detail) error {
	payload := webhookPayload{
		Embeds: []embed{{
			Title:       d.ID.String(),
			Description: fmt.Sprintf("%s %s ➡️ %s %s", d.Amount, d.FromCode, d.Payout, d.ToCode),
			Color:       embedColor,
			Timestamp:   d.At.Format(time.RFC3339),
			Author:      embedAuthor{Name: d.User},
			Fields: []embedField{
				{Name: "From", Value: fmt.Sprintf("%s - %s", d.FromCode, d.FromName)},
				{Name: "To", Value: fmt.Sprintf("%s - %s", d.ToCode, d.ToName)},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	//nolint:errcheck
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}

	return nil
}
