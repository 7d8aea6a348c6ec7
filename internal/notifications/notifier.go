// Package notifications bridges the platform's realtime event feed to the
// user-facing toast channel.
package notifications

import (
	"context"

	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Event kinds published on the shared channel.
const (
	EventOrderNew       = "orders:new"
	EventOrderStatus    = "orders:status"
	EventPacksUpdated   = "vendors:packsUpdated"
	EventBalanceUpdated = "users:balanceUpdated"
)

// Event is one message on the feed. UserID scopes user-directed events;
// broadcast events (vendor pack updates) leave it empty.
type Event struct {
	Kind    string         `json:"event"`
	UserID  string         `json:"userId,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier delivers an event to whoever is listening for the user. The
// consumer fans out every event unfiltered; a session-scoped implementation
// must drop user-directed events whose UserID names another user. Broadcast
// events have an empty UserID and are delivered to everyone.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier writes events to the structured log. It is the default sink
// until a push transport is wired in.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) {
	if n == nil || n.logg == nil {
		return
	}
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{
		"event":   event.Kind,
		"user_id": event.UserID,
		"message": event.Message,
	}), "notification")
}
