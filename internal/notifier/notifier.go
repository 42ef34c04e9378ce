package notifier

import "context"

// Notifier delivers a formatted message to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NoopNotifier drops messages. Used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string) error { return nil }
