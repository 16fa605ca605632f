package services

import (
	"context"
	"fmt"

	"github.com/SberTube/sbertube-api/internal/models/events"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
)

// eventWriter 负责把领域事件编码后写入 Outbox，并记录写入指标。
type eventWriter struct {
	outbox  OutboxEnqueuer
	metrics *outboxMetrics
}

func newEventWriter(outbox OutboxEnqueuer, component string) *eventWriter {
	return &eventWriter{
		outbox:  outbox,
		metrics: newOutboxMetrics(component),
	}
}

// enqueue 在当前事务内写入事件，事件为 nil 时直接返回。
func (w *eventWriter) enqueue(ctx context.Context, sess txmanager.Session, evt *events.DomainEvent) error {
	if evt == nil || w.outbox == nil {
		return nil
	}
	msg, err := buildOutboxMessage(ctx, evt)
	if err != nil {
		w.metrics.recordFailure(ctx, evt.Kind, err)
		return err
	}
	if err := w.outbox.Enqueue(ctx, sess, msg); err != nil {
		w.metrics.recordFailure(ctx, evt.Kind, err)
		return fmt.Errorf("enqueue outbox: %w", err)
	}
	w.metrics.recordSuccess(ctx, evt.Kind, evt.OccurredAt)
	return nil
}

func buildOutboxMessage(ctx context.Context, evt *events.DomainEvent) (repositories.OutboxMessage, error) {
	payload, err := events.Marshal(evt)
	if err != nil {
		return repositories.OutboxMessage{}, err
	}
	return repositories.OutboxMessage{
		EventID:       evt.EventID,
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		EventType:     evt.Kind,
		Payload:       payload,
		Headers:       events.BuildAttributes(evt, events.TraceIDFromContext(ctx)),
		AvailableAt:   evt.OccurredAt,
	}, nil
}
