package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// Notifier delivers events to an external HTTP endpoint from a background
// worker. Delivery is best effort: a full queue drops the event and a failed
// POST is logged, never surfaced to the request that produced it.
type Notifier struct {
	url    string
	client *http.Client
	queue  chan event
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

type event struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewNotifier creates a Notifier posting to url. An empty url disables
// delivery entirely.
func NewNotifier(url string, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 64
	}
	n := &Notifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		queue:  make(chan event, queueSize),
	}
	n.wg.Add(1)
	go n.worker()
	return n
}

// Notify enqueues an event for delivery without blocking the caller. Events
// arriving after Close are dropped.
func (n *Notifier) Notify(eventType string, payload interface{}) {
	if n.url == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		logger.Warn().Str("event", eventType).Msg("Webhook notifier closed, event dropped")
		return
	}

	select {
	case n.queue <- event{Type: eventType, Payload: payload, OccurredAt: time.Now().UTC()}:
	default:
		logger.Warn().Str("event", eventType).Msg("Webhook queue full, event dropped")
	}
}

// Close stops accepting events and waits for pending deliveries
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for ev := range n.queue {
		n.deliver(ev)
	}
}

func (n *Notifier) deliver(ev event) {
	body, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Str("event", ev.Type).Msg("Failed to marshal webhook event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Str("event", ev.Type).Msg("Failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("event", ev.Type).Msg("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("event", ev.Type).
			Msg("Webhook endpoint returned non-success status")
	}
}
