package shopdesk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedPublish struct {
	at []time.Time
}

func (r *recordedPublish) MarkPublished(_ context.Context, t time.Time) error {
	r.at = append(r.at, t)
	return nil
}

func newTestPublisher(t *testing.T, url string, rec PublishRecorder) *Publisher {
	t.Helper()
	cfg := Config{
		SiteURL:              "https://shop.vn",
		PublishWebhookURL:    url,
		PublishWebhookSecret: "s3cret",
		PublishTimeout:       time.Second,
		PublishMaxTries:      3,
	}
	p := NewPublisher(cfg, nil, rec, zap.NewNop())
	p.backoff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return p
}

func TestPublisherRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "s3cret", r.Header.Get(webhookSecretHeader))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "publish", body["event"])
		assert.Equal(t, "https://shop.vn", body["site_url"])
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rec := &recordedPublish{}
	res, err := newTestPublisher(t, srv.URL, rec).Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.Status)
	assert.Equal(t, 3, res.Attempts)
	require.Len(t, rec.at, 1)
	assert.Equal(t, res.PublishedAt, rec.at[0])
}

func TestPublisherStopsOnClientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rec := &recordedPublish{}
	_, err := newTestPublisher(t, srv.URL, rec).Trigger(context.Background())
	require.ErrorIs(t, err, ErrPublishFailed)
	assert.Contains(t, err.Error(), "401")
	assert.EqualValues(t, 1, hits.Load())
	assert.Empty(t, rec.at)
}

func TestPublisherGivesUpAfterMaxTries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestPublisher(t, srv.URL, nil).Trigger(context.Background())
	require.ErrorIs(t, err, ErrPublishFailed)
	assert.EqualValues(t, 3, hits.Load())
}

func TestPublisherDisabled(t *testing.T) {
	p := newTestPublisher(t, "", nil)
	assert.False(t, p.Enabled())
	_, err := p.Trigger(context.Background())
	assert.True(t, errors.Is(err, ErrPublishDisabled))
}
