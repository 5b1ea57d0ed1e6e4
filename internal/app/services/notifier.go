package services

import (
	"fmt"

	"github.com/campuspay/studentbank/internal/pkg/webhook"
	"github.com/campuspay/studentbank/internal/pkg/websocket"
)

// Channel names for realtime subscriptions. Staff dashboards listen on the
// staff channel; each student page listens on its own channel.
const (
	ChannelStaff = "staff"
)

// StudentChannel returns the subscription channel for one student
func StudentChannel(studentID int64) string {
	return fmt.Sprintf("student:%d", studentID)
}

// Notifier fans domain events out to connected clients and the configured
// webhook. All delivery is best effort and never blocks the caller.
type Notifier interface {
	StudentsChanged(eventType string, payload interface{})
	BalanceChanged(studentID int64, payload interface{})
}

type notifier struct {
	hub     *websocket.Hub
	webhook *webhook.Notifier
}

// NewNotifier creates a Notifier over the websocket hub and webhook worker.
// Either may be nil, which disables that delivery path.
func NewNotifier(hub *websocket.Hub, wh *webhook.Notifier) Notifier {
	return &notifier{hub: hub, webhook: wh}
}

// StudentsChanged tells staff dashboards that the student list changed
func (n *notifier) StudentsChanged(eventType string, payload interface{}) {
	if n.hub != nil {
		n.hub.Publish(ChannelStaff, websocket.Event{Type: eventType, Payload: payload})
	}
	if n.webhook != nil {
		n.webhook.Notify(eventType, payload)
	}
}

// BalanceChanged tells a student's open pages that their balance moved, and
// staff dashboards as well.
func (n *notifier) BalanceChanged(studentID int64, payload interface{}) {
	if n.hub != nil {
		event := websocket.Event{Type: "balance.changed", Payload: payload}
		n.hub.Publish(StudentChannel(studentID), event)
		n.hub.Publish(ChannelStaff, event)
	}
	if n.webhook != nil {
		n.webhook.Notify("balance.changed", payload)
	}
}

// NopNotifier returns a Notifier that discards every event
func NopNotifier() Notifier {
	return &notifier{}
}
