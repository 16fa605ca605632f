// Package events 定义写入 Outbox 的领域事件模型。
// 事件以 JSON 编码落库，由发布任务异步投递到消息总线。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// SchemaVersionV1 表示当前事件负载的结构版本。
const SchemaVersionV1 = "v1"

// AggregateVideo 标识视频聚合根。
const AggregateVideo = "video"

// AggregateComment 标识评论聚合根。
const AggregateComment = "comment"

// 事件类型常量定义
const (
	KindVideoCreated    = "tube.video.created"
	KindVideoUpdated    = "tube.video.updated"
	KindVideoDeleted    = "tube.video.deleted"
	KindReactionAdded   = "tube.video.reaction_added"
	KindReactionRemoved = "tube.video.reaction_removed"
	KindCommentCreated  = "tube.comment.created"
)

// DomainEvent 表示一条待发布的领域事件。
type DomainEvent struct {
	EventID       uuid.UUID
	Kind          string
	AggregateType string
	AggregateID   uuid.UUID
	OccurredAt    time.Time
	Payload       any
}

// NewDomainEvent 构造领域事件，occurredAt 为零值时取当前时间。
func NewDomainEvent(kind, aggregateType string, aggregateID uuid.UUID, occurredAt time.Time, payload any) (*DomainEvent, error) {
	if kind == "" {
		return nil, fmt.Errorf("event kind is required")
	}
	if aggregateID == uuid.Nil {
		return nil, fmt.Errorf("aggregate id is required")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &DomainEvent{
		EventID:       uuid.New(),
		Kind:          kind,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    occurredAt.UTC(),
		Payload:       payload,
	}, nil
}

type envelope struct {
	EventID       uuid.UUID `json:"event_id"`
	Kind          string    `json:"kind"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	SchemaVersion string    `json:"schema_version"`
	Payload       any       `json:"payload"`
}

// Marshal 将事件序列化为 JSON 负载。
func Marshal(event *DomainEvent) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("event is nil")
	}
	data, err := json.Marshal(envelope{
		EventID:       event.EventID,
		Kind:          event.Kind,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OccurredAt:    event.OccurredAt,
		SchemaVersion: SchemaVersionV1,
		Payload:       event.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal domain event: %w", err)
	}
	return data, nil
}

// BuildAttributes 构造消息属性，供 Pub/Sub 订阅端过滤与追踪关联。
func BuildAttributes(event *DomainEvent, traceID string) map[string]string {
	attrs := map[string]string{
		"event_type":     event.Kind,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"schema_version": SchemaVersionV1,
	}
	if traceID != "" {
		attrs["trace_id"] = traceID
	}
	return attrs
}

// TraceIDFromContext 从当前 span 上下文提取 trace id，无有效 span 时返回空串。
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
