// Package notify bridges payment-link messages onto the SMS gateway topic.
// The actual delivery mechanism lives downstream; this side only guarantees
// an acknowledged hand-off.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"paylink-system/shared/kafka"
)

type KafkaDispatcher struct {
	producer *kafka.SyncProducer
	topic    string
}

func NewKafkaDispatcher(producer *kafka.SyncProducer, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer, topic: topic}
}

// SendMessage publishes the message to the outbound topic and returns the
// assigned message id. A broker failure is returned to the caller.
func (d *KafkaDispatcher) SendMessage(_ context.Context, from, to, body string) (string, error) {
	messageID := uuid.NewString()
	err := d.producer.Publish(d.topic, map[string]interface{}{
		"message_id": messageID,
		"from":       from,
		"to":         to,
		"body":       body,
	})
	if err != nil {
		return "", fmt.Errorf("dispatch message to %s: %w", to, err)
	}
	return messageID, nil
}
