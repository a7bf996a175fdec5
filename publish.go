package shopdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

var (
	// ErrPublishDisabled is returned when no webhook URL is configured.
	ErrPublishDisabled = errors.New("publish: webhook not configured")
	// ErrPublishFailed wraps the last webhook error after retries give up.
	ErrPublishFailed = errors.New("publish: webhook failed")
)

const webhookSecretHeader = "X-Webhook-Secret"

// PublishRecorder stores the time of the last successful publish.
type PublishRecorder interface {
	MarkPublished(ctx context.Context, t time.Time) error
}

// Publisher triggers the storefront rebuild webhook.
type Publisher struct {
	url      string
	secret   string
	siteURL  string
	client   *http.Client
	maxTries uint
	backoff  func() backoff.BackOff
	recorder PublishRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// PublishResult describes a successful publish.
type PublishResult struct {
	Status      int       `json:"status"`
	Attempts    int       `json:"attempts"`
	PublishedAt time.Time `json:"published_at"`
}

// NewPublisher builds a Publisher from cfg. A nil client uses one with
// cfg.PublishTimeout.
func NewPublisher(cfg Config, client *http.Client, recorder PublishRecorder, logger *zap.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: cfg.PublishTimeout}
	}
	return &Publisher{
		url:      cfg.PublishWebhookURL,
		secret:   cfg.PublishWebhookSecret,
		siteURL:  cfg.SiteURL,
		client:   client,
		maxTries: cfg.PublishMaxTries,
		backoff:  func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a webhook URL is configured.
func (p *Publisher) Enabled() bool { return p.url != "" }

// Trigger POSTs the publish event. 5xx responses and transport errors are
// retried with exponential backoff; any other non-2xx status stops at once.
func (p *Publisher) Trigger(ctx context.Context) (PublishResult, error) {
	if !p.Enabled() {
		return PublishResult{}, ErrPublishDisabled
	}
	triggeredAt := p.now()
	body, err := json.Marshal(map[string]any{
		"event":        "publish",
		"site_url":     p.siteURL,
		"triggered_at": triggeredAt,
	})
	if err != nil {
		return PublishResult{}, err
	}

	attempts := 0
	status, err := backoff.Retry(ctx, func() (int, error) {
		attempts++
		status, err := p.post(ctx, body)
		if err != nil {
			p.logger.Warn("publish attempt failed", zap.Int("attempt", attempts), zap.Int("status", status), zap.Error(err))
			return status, err
		}
		return status, nil
	},
		backoff.WithBackOff(p.backoff()),
		backoff.WithMaxTries(p.maxTries),
	)
	if err != nil {
		return PublishResult{}, fmt.Errorf("%w after %d attempt(s): %w", ErrPublishFailed, attempts, err)
	}

	if p.recorder != nil {
		if err := p.recorder.MarkPublished(ctx, triggeredAt); err != nil {
			return PublishResult{}, fmt.Errorf("record publish: %w", err)
		}
	}
	p.logger.Info("published", zap.Int("status", status), zap.Int("attempts", attempts))
	return PublishResult{Status: status, Attempts: attempts, PublishedAt: triggeredAt}, nil
}

func (p *Publisher) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.secret != "" {
		req.Header.Set(webhookSecretHeader, p.secret)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode >= 500:
		return resp.StatusCode, fmt.Errorf("webhook returned %d", resp.StatusCode)
	default:
		return resp.StatusCode, backoff.Permanent(fmt.Errorf("webhook returned %d", resp.StatusCode))
	}
}
