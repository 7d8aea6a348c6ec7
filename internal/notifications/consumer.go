package notifications

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// subscription is the slice of a redis pub/sub handle the consumer needs.
type subscription interface {
	ReceiveMessage(ctx context.Context) (*goredis.Message, error)
	Close() error
}

// Consumer drains the shared event channel and forwards each event to the
// Notifier. Balance events additionally invoke the refresh hook so cached
// wallet reads get invalidated.
type Consumer struct {
	sub      subscription
	notifier Notifier
	refresh  func(ctx context.Context, userID string)
	logg     *logger.Logger
}

func NewConsumer(sub subscription, notifier Notifier, refresh func(ctx context.Context, userID string), logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription is required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Consumer{sub: sub, notifier: notifier, refresh: refresh, logg: logg}, nil
}

// Run blocks until the context is cancelled. Malformed messages are logged
// and skipped; the loop never dies on a bad payload.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.sub.Close()
	for {
		msg, err := c.sub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "receiving event")
		}
		c.handle(ctx, msg.Payload)
	}
}

func (c *Consumer) handle(ctx context.Context, payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"error": err.Error()}),
			"dropping malformed event")
		return
	}
	switch event.Kind {
	case EventOrderNew, EventOrderStatus, EventPacksUpdated:
		c.notifier.Notify(ctx, event)
	case EventBalanceUpdated:
		c.notifier.Notify(ctx, event)
		if c.refresh != nil && event.UserID != "" {
			c.refresh(ctx, event.UserID)
		}
	default:
		c.logg.Debug(c.logg.WithFields(ctx, map[string]any{"event": event.Kind}),
			"ignoring unknown event kind")
	}
}
