package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ledgerview/internal/amqp"
)

type fakeConsumer struct {
	messages []*amqp.RefreshMessage
	err      error
}

func (f *fakeConsumer) ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshMessage) error) error {
	for _, msg := range f.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return f.err
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestRefreshConsumerInvalidatesSnapshot(t *testing.T) {
	logger, buf := newBufferLogger()
	consumer := &fakeConsumer{messages: []*amqp.RefreshMessage{
		amqp.NewRefreshMessage("import"),
		{Source: "ledgerctl", Timestamp: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
	}}
	snap := &countingInvalidator{}

	runRefreshConsumer(context.Background(), consumer, snap, logger)

	if snap.calls != 2 {
		t.Fatalf("expected 2 invalidations, got %d", snap.calls)
	}
	out := buf.String()
	if !strings.Contains(out, "source=ledgerctl") {
		t.Fatalf("expected refresh source in log, got %s", out)
	}
	if strings.Contains(out, "level=ERROR") {
		t.Fatalf("clean stop logged an error: %s", out)
	}
}

func TestRefreshConsumerFailureIsLogged(t *testing.T) {
	logger, buf := newBufferLogger()
	consumer := &fakeConsumer{err: errors.New("start consuming: channel closed")}

	runRefreshConsumer(context.Background(), consumer, &countingInvalidator{}, logger)

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "Refresh consumer failed") {
		t.Fatalf("expected consumer failure to be logged, got %s", out)
	}
	if !strings.Contains(out, "channel closed") {
		t.Fatalf("expected cause in log, got %s", out)
	}
}

func TestRefreshConsumerCancelIsQuiet(t *testing.T) {
	logger, buf := newBufferLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runRefreshConsumer(ctx, &fakeConsumer{err: errors.New("closed")}, &countingInvalidator{}, logger)

	if strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("shutdown logged an error: %s", buf.String())
	}
}

func TestRefreshConsumerLogsHandlerError(t *testing.T) {
	logger, buf := newBufferLogger()
	consumer := &fakeConsumer{messages: []*amqp.RefreshMessage{{Source: "a"}, {Source: "b"}}}
	snap := &countingInvalidator{err: errors.New("redis down")}

	runRefreshConsumer(context.Background(), consumer, snap, logger)

	if !strings.Contains(buf.String(), "redis down") {
		t.Fatalf("expected handler error in log, got %s", buf.String())
	}
}
