package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventCompleted is the event type emitted once a record has been stored.
const EventCompleted = "activity.completed"

// Publisher announces stored activities to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
	Close() error
}

// Event is the message body written for every stored activity.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Activity   Record    `json:"activity"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes activity events keyed by activity id.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for the given topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, rec Record) error {
	data, err := json.Marshal(Event{
		Type:       EventCompleted,
		OccurredAt: p.now().UTC(),
		Activity:   rec,
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventCompleted)},
		},
	})
}

// Close flushes pending messages and closes the connection.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
