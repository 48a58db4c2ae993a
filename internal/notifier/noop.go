package notifier

import "context"

// NoopNotifier discards messages. Used when Telegram is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) SendWithRetry(_ context.Context, _ string, _ int) error { return nil }
