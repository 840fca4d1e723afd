package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/models"
	"arena/internal/monitoring"
)

// En-têtes de signature des livraisons
const (
	HeaderSignature = "X-ClawCombat-Signature"
	HeaderEvent     = "X-ClawCombat-Event"
)

// Delivery une livraison webhook en attente
type Delivery struct {
	URL     string
	Secret  string
	Event   string
	Payload *models.WebhookPayload
}

// DispatcherInterface définit le point d'entrée des notifications sortantes
type DispatcherInterface interface {
	Enqueue(url, secret string, payload *models.WebhookPayload)
	Start()
	Stop()
}

// Dispatcher file de livraisons webhook avec pool de workers. L'enqueue ne
// bloque jamais le chemin de jeu: file pleine = livraison abandonnée.
type Dispatcher struct {
	config  *config.WebhookConfig
	client  *http.Client
	queue   chan Delivery
	metrics *monitoring.Metrics
	wg      sync.WaitGroup
	stopped chan struct{}
	once    sync.Once
}

// NewDispatcher crée un dispatcher webhook
func NewDispatcher(cfg *config.WebhookConfig, metrics *monitoring.Metrics) *Dispatcher {
	return &Dispatcher{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		queue:   make(chan Delivery, cfg.QueueSize),
		metrics: metrics,
		stopped: make(chan struct{}),
	}
}

// Start démarre le pool de workers de livraison
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	logrus.WithField("workers", d.config.Workers).Info("Webhook dispatcher started")
}

// Stop draine la file et attend la fin des workers
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.stopped)
		close(d.queue)
	})
	d.wg.Wait()

	logrus.Info("Webhook dispatcher stopped")
}

// Enqueue programme une livraison sans bloquer l'appelant. Un agent sans
// URL de webhook est silencieusement ignoré.
func (d *Dispatcher) Enqueue(url, secret string, payload *models.WebhookPayload) {
	if url == "" {
		return
	}

	delivery := Delivery{
		URL:     url,
		Secret:  secret,
		Event:   payload.Event,
		Payload: payload,
	}

	select {
	case <-d.stopped:
		return
	default:
	}

	select {
	case d.queue <- delivery:
	default:
		logrus.WithFields(logrus.Fields{
			"event": payload.Event,
			"url":   url,
		}).Warn("Webhook queue full, delivery dropped")
		if d.metrics != nil {
			d.metrics.WebhookDeliveries.WithLabelValues(payload.Event, "dropped").Inc()
		}
	}
}

// worker consomme la file et livre avec retries
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for delivery := range d.queue {
		d.deliver(delivery)
	}

	logrus.WithField("worker", id).Debug("Webhook worker exiting")
}

// deliver effectue une livraison avec retries sur erreurs réseau et 5xx.
// Les 4xx sont terminaux: l'endpoint refuse, insister ne changera rien.
func (d *Dispatcher) deliver(delivery Delivery) {
	body, err := json.Marshal(delivery.Payload)
	if err != nil {
		logrus.WithError(err).WithField("event", delivery.Event).Error("Failed to marshal webhook payload")
		return
	}

	signature := Sign(delivery.Secret, body)
	backoff := d.config.InitialBackoff

	for attempt := 1; attempt <= d.config.MaxRetries; attempt++ {
		status, err := d.post(delivery.URL, delivery.Event, signature, body)

		switch {
		case err == nil && status >= 200 && status < 300:
			if d.metrics != nil {
				d.metrics.WebhookDeliveries.WithLabelValues(delivery.Event, "success").Inc()
			}
			return

		case err == nil && status >= 400 && status < 500:
			logrus.WithFields(logrus.Fields{
				"event":  delivery.Event,
				"url":    delivery.URL,
				"status": status,
			}).Warn("Webhook rejected by endpoint")
			if d.metrics != nil {
				d.metrics.WebhookDeliveries.WithLabelValues(delivery.Event, "rejected").Inc()
			}
			return
		}

		fields := logrus.Fields{
			"event":   delivery.Event,
			"url":     delivery.URL,
			"attempt": attempt,
		}
		if err != nil {
			fields["error"] = err.Error()
		} else {
			fields["status"] = status
		}
		logrus.WithFields(fields).Warn("Webhook delivery failed")

		if attempt < d.config.MaxRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	if d.metrics != nil {
		d.metrics.WebhookDeliveries.WithLabelValues(delivery.Event, "failed").Inc()
	}
}

// post envoie la requête signée et retourne le statut HTTP
func (d *Dispatcher) post(url, event, signature string, body []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, signature)
	req.Header.Set(HeaderEvent, event)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drainage pour la réutilisation des connexions
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

// Sign calcule la signature HMAC-SHA256 hex d'un corps de webhook
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature vérifie une signature reçue en temps constant
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
