// Package events publishes resolved chat searches to Kafka for analytics.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"propertychat/internal/model"
)

// KafkaPublisher writes search events to a single topic
type KafkaPublisher struct {
	writer   *kafka.Writer
	topic    string
	failures atomic.Int64
}

// NewKafkaPublisher creates an async producer for topic on broker
func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	p := &KafkaPublisher{topic: topic}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 100 * time.Millisecond,
		// Async writes only report delivery errors here
		Completion: p.onCompletion,
	}
	return p
}

func (p *KafkaPublisher) onCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	total := p.failures.Add(int64(len(messages)))
	log.Printf("Warning: Failed to deliver %d search event(s) to %s (%d failed so far): %v", len(messages), p.topic, total, err)
}

// Failures returns how many search events could not be delivered
func (p *KafkaPublisher) Failures() int64 {
	return p.failures.Load()
}

// Topic returns the destination topic
func (p *KafkaPublisher) Topic() string {
	return p.topic
}

// PublishSearch enqueues one search event keyed by session id
func (p *KafkaPublisher) PublishSearch(ctx context.Context, entry *model.SearchLog) error {
	msg, err := searchMessage(entry)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func searchMessage(entry *model.SearchLog) (kafka.Message, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode search event: %w", err)
	}

	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Key:   []byte(entry.SessionID),
		Value: data,
		Time:  ts,
	}, nil
}
