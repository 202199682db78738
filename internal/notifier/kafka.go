package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes status-change events as JSON messages keyed by
// product id, so all events for one product land on the same partition in
// order.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(topic string, brokers ...string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Publish(ctx context.Context, event StatusChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status change event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: payload,
	}
	if e2 := n.writer.WriteMessages(ctx, message); e2 != nil {
		return fmt.Errorf("write status change event: %w", e2)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
