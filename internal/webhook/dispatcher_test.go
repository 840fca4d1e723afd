package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/config"
	"arena/internal/models"
)

func testWebhookConfig() *config.WebhookConfig {
	return &config.WebhookConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		QueueSize:      8,
		Workers:        1,
	}
}

func TestSignAndVerify(t *testing.T) {
	body := []byte(`{"event":"battle_end"}`)
	signature := Sign("whsec_test", body)

	assert.Len(t, signature, 64)
	assert.True(t, VerifySignature("whsec_test", body, signature))
	assert.False(t, VerifySignature("whsec_other", body, signature))
	assert.False(t, VerifySignature("whsec_test", []byte("tampered"), signature))
}

func TestDispatcherDeliversSignedPayload(t *testing.T) {
	var gotEvent atomic.Value
	var gotValid atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		gotEvent.Store(r.Header.Get(HeaderEvent))
		gotValid.Store(VerifySignature("whsec_test", body, r.Header.Get(HeaderSignature)))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(testWebhookConfig(), nil)
	d.Start()

	d.Enqueue(server.URL, "whsec_test", &models.WebhookPayload{
		Event:     models.WebhookBattleEnd,
		BattleID:  uuid.New(),
		Timestamp: time.Now(),
	})

	// Stop draine la file avant de rendre la main
	d.Stop()

	assert.Equal(t, models.WebhookBattleEnd, gotEvent.Load())
	assert.True(t, gotValid.Load())
}

func TestDispatcherRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(testWebhookConfig(), nil)
	d.Start()

	d.Enqueue(server.URL, "whsec_test", &models.WebhookPayload{
		Event:     models.WebhookBattleTurn,
		Timestamp: time.Now(),
	})
	d.Stop()

	assert.Equal(t, int32(2), attempts.Load())
}

func TestDispatcherDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	d := NewDispatcher(testWebhookConfig(), nil)
	d.Start()

	d.Enqueue(server.URL, "whsec_test", &models.WebhookPayload{
		Event:     models.WebhookBattleTurn,
		Timestamp: time.Now(),
	})
	d.Stop()

	// Un 4xx est terminal: l'endpoint refuse, pas de retry
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewDispatcher(testWebhookConfig(), nil)
	d.Start()

	d.Enqueue(server.URL, "whsec_test", &models.WebhookPayload{
		Event:     models.WebhookBattleStart,
		Timestamp: time.Now(),
	})
	d.Stop()

	assert.Equal(t, int32(3), attempts.Load())
}

func TestDispatcherSkipsEmptyURL(t *testing.T) {
	d := NewDispatcher(testWebhookConfig(), nil)
	d.Start()

	// Un agent sans webhook est silencieusement ignoré
	d.Enqueue("", "whsec_test", &models.WebhookPayload{
		Event:     models.WebhookPing,
		Timestamp: time.Now(),
	})
	d.Stop()
}
