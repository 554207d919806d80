package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	EventOutcomeCompleted = "completed"
	EventOutcomeFailed    = "failed"
)

// SyncEvent is the lifecycle record published after every scheduled pass.
type SyncEvent struct {
	Job         string    `json:"job"`
	RunID       string    `json:"run_id"`
	Host        string    `json:"host,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Outcome     string    `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventPublisher writes sync lifecycle events to kafka.  A nil publisher is
// valid and drops events, so deployments without kafka configured keep
// working.
type EventPublisher struct {
	writer kafkaWriter
}

func NewEventPublisher(writer *kafka.Writer) *EventPublisher {
	if writer == nil {
		return nil
	}
	return &EventPublisher{writer: writer}
}

// Publish is best effort.  A write failure is counted and logged but never
// propagated, the sync passes themselves must not depend on kafka.
func (ep *EventPublisher) Publish(ctx context.Context, event SyncEvent) {
	if ep == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.LogError("Unable to marshal sync event", err)
		return
	}

	message := kafka.Message{
		Key:   []byte(event.Job),
		Value: payload,
	}

	if err := ep.writer.WriteMessages(ctx, message); err != nil {
		syncEventWriteFailureCounter.Inc()
		logger.Log.WithFields(logrus.Fields{"error": err, "job": event.Job, "run_id": event.RunID}).Error("Unable to write sync event to kafka")
	}
}
