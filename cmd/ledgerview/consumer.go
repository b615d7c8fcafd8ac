package main

import (
	"context"
	"errors"
	"log/slog"

	"ledgerview/internal/amqp"
	"ledgerview/internal/log"
)

type refreshConsumer interface {
	ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshMessage) error) error
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// runRefreshConsumer drops the snapshot on every refresh event until ctx
// ends. A consumer failure is logged and does not stop the server: the
// dashboard keeps serving and POST /refresh still reloads.
func runRefreshConsumer(ctx context.Context, consumer refreshConsumer, snap invalidator, logger *slog.Logger) {
	err := consumer.ConsumeRefresh(ctx, func(ctx context.Context, msg *amqp.RefreshMessage) error {
		logger.InfoContext(ctx, "Refresh requested", "source", msg.Source, "requested_at", msg.Timestamp)
		return snap.Invalidate(ctx)
	})
	if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		logger.Info("Refresh consumer stopped")
		return
	}
	logger.Error("Refresh consumer failed, refresh events disabled",
		log.NewFields().WithComponent(log.ComponentAMQP).WithError(err).ToSlice()...)
}
