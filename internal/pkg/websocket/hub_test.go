package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish("student:1", Event{Type: "balance.changed"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}

	assert.Zero(t, hub.ClientCount("student:1"))
}
