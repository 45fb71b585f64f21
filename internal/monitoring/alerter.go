// Package monitoring posts webhook alerts when a batch run looks unhealthy.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertErrorRate AlertType = "batch_error_rate"
	AlertDeadline  AlertType = "batch_deadline"
	AlertLowYield  AlertType = "batch_low_yield"
)

// minAttempted is the smallest batch whose rates are worth alerting on.
const minAttempted = 5

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	RunID     string         `json:"run_id"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates batch reports against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	now    func() time.Time
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Evaluate checks the report against thresholds and returns any alerts.
func (a *Alerter) Evaluate(rep *batch.Report) []Alert {
	var alerts []Alert
	now := a.now().UTC()

	if rep.Attempted >= minAttempted && a.cfg.ErrorRateThreshold > 0 && rep.ErrorRate() > a.cfg.ErrorRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertErrorRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Batch error rate %.1f%% exceeds threshold %.1f%% (%d errors / %d attempted)",
				rep.ErrorRate()*100, a.cfg.ErrorRateThreshold*100, rep.Errors, rep.Attempted,
			),
			RunID: rep.RunID,
			Details: map[string]any{
				"error_rate": rep.ErrorRate(),
				"threshold":  a.cfg.ErrorRateThreshold,
				"errors":     rep.Errors,
				"attempted":  rep.Attempted,
			},
			Timestamp: now,
		})
	}

	if rep.DeadlineExceeded {
		alerts = append(alerts, Alert{
			Type:     AlertDeadline,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Batch hit its deadline after %s with %d companies unprocessed",
				rep.Duration().Round(time.Second), rep.Unprocessed,
			),
			RunID: rep.RunID,
			Details: map[string]any{
				"attempted":   rep.Attempted,
				"unprocessed": rep.Unprocessed,
			},
			Timestamp: now,
		})
	}

	foundRate := rep.FoundPercent() / 100
	if rep.Attempted >= minAttempted && a.cfg.MinFoundRate > 0 && foundRate < a.cfg.MinFoundRate {
		alerts = append(alerts, Alert{
			Type:     AlertLowYield,
			Severity: "low",
			Message: fmt.Sprintf(
				"Only %.1f%% of companies got an email, below %.1f%%",
				rep.FoundPercent(), a.cfg.MinFoundRate*100,
			),
			RunID: rep.RunID,
			Details: map[string]any{
				"found":     rep.Found,
				"attempted": rep.Attempted,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// Check evaluates rep and sends whatever it finds.
func (a *Alerter) Check(ctx context.Context, rep *batch.Report) int {
	alerts := a.Evaluate(rep)
	for _, alert := range alerts {
		zap.L().Warn("monitoring: "+alert.Message, zap.String("type", string(alert.Type)))
	}
	return a.SendAlerts(ctx, alerts)
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
