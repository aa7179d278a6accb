// Package alert handles asynchronous notifications to registered webhook
// URLs when a high-tier detection is ingested.
//
// Notifications are sent in a goroutine so they never block the ingest
// response. Failed deliveries are logged but not retried (a production
// system would use a persistent queue with exponential backoff).
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"aquila/risk-insights-api/internal/domain"
	"aquila/risk-insights-api/internal/store"
)

// Notifier sends webhook payloads to all registered, active endpoints.
type Notifier struct {
	store  *store.Store
	client *http.Client
	log    zerolog.Logger
}

// New creates a Notifier with a sensible default HTTP client timeout.
func New(s *store.Store, log zerolog.Logger) *Notifier {
	return &Notifier{
		store: s,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.With().Str("component", "alert").Logger(),
	}
}

// NotifyAsync fires webhook calls in the background for a freshly
// ingested record. Only high-tier detections trigger alerts.
func (n *Notifier) NotifyAsync(rec *domain.Record) {
	if rec.RiskTier != domain.TierHigh {
		return
	}
	for _, wh := range n.store.ListActiveWebhooks() {
		go n.send(wh, rec)
	}
}

// send delivers a single webhook call and logs the outcome.
func (n *Notifier) send(wh *domain.WebhookConfig, rec *domain.Record) {
	payload := domain.WebhookPayload{
		Event:       "high_tier_detection",
		TriggeredAt: time.Now().UTC(),
		Record:      *rec,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("webhook_id", wh.ID).Msg("failed to marshal payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Str("webhook_id", wh.ID).Msg("failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Aquila-Event", "high_tier_detection")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("webhook_id", wh.ID).Str("url", wh.URL).Msg("delivery failed")
		return
	}
	defer resp.Body.Close()

	n.log.Info().
		Str("webhook_id", wh.ID).
		Str("url", wh.URL).
		Int("status", resp.StatusCode).
		Str("record_id", rec.ID).
		Str("risk_tier", rec.RiskTier).
		Msg("delivered")
}
