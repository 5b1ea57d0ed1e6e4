package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierDeliversEvents(t *testing.T) {
	var mu sync.Mutex
	var received []map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))

		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 8)
	n.Notify("balance.changed", map[string]interface{}{"studentId": 7})
	n.Notify("student.created", map[string]interface{}{"studentId": 8})
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "balance.changed", received[0]["type"])
	assert.NotEmpty(t, received[0]["occurredAt"])
}

func TestNotifierDisabledWithoutURL(t *testing.T) {
	n := NewNotifier("", 8)
	// Must be a no-op, not a panic or a hang
	n.Notify("balance.changed", nil)
	n.Close()
}

func TestNotifierNeverBlocksCaller(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	n := NewNotifier(srv.URL, 1)

	done := make(chan struct{})
	go func() {
		// More events than the queue holds while delivery is stuck
		for i := 0; i < 20; i++ {
			n.Notify("balance.changed", map[string]interface{}{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked the caller")
	}
}

func TestNotifierNotifyAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 8)
	n.Close()

	// A late event during shutdown is dropped, never a send on a closed channel
	n.Notify("balance.changed", map[string]interface{}{"studentId": 7})
	n.Close()
}

func TestNotifierSurvivesFailedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 8)
	n.Notify("balance.changed", nil)
	// Close waits for delivery; a failing endpoint must not wedge it
	n.Close()
}
