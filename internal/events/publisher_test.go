package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"propertychat/internal/model"
)

func TestSearchMessage(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := &model.SearchLog{
		SessionID:   "session-1",
		Message:     "3 beds in Miami",
		Filters:     &model.SearchFilter{Location: model.StringPtr("Miami"), Bedrooms: model.IntPtr(3), Action: model.ActionSearch},
		Source:      "lexical",
		Relaxation:  "drop_bedrooms",
		ResultCount: 2,
		CreatedAt:   created,
	}

	msg, err := searchMessage(entry)
	if err != nil {
		t.Fatalf("searchMessage() error = %v", err)
	}
	if string(msg.Key) != "session-1" {
		t.Errorf("Key = %q, want session-1", msg.Key)
	}
	if !msg.Time.Equal(created) {
		t.Errorf("Time = %s, want %s", msg.Time, created)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("Value is not JSON: %v", err)
	}
	if decoded["relaxation"] != "drop_bedrooms" || decoded["result_count"] != float64(2) {
		t.Errorf("Unexpected payload: %s", msg.Value)
	}
	filters, ok := decoded["filters"].(map[string]interface{})
	if !ok || filters["location"] != "Miami" {
		t.Errorf("Unexpected filters in payload: %s", msg.Value)
	}
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher("localhost:9092", "property.chat.searches")
	defer p.Close()

	if p.Topic() != "property.chat.searches" {
		t.Errorf("Topic() = %q", p.Topic())
	}
}

func TestKafkaPublisher_CountsDeliveryFailures(t *testing.T) {
	p := NewKafkaPublisher("localhost:9092", "property.chat.searches")
	defer p.Close()

	if p.writer.Completion == nil {
		t.Fatal("Expected a completion callback for async writes")
	}

	msgs := []kafka.Message{{Key: []byte("a")}, {Key: []byte("b")}}
	p.writer.Completion(msgs, nil)
	if got := p.Failures(); got != 0 {
		t.Errorf("Failures() = %d after a successful batch, want 0", got)
	}

	p.writer.Completion(msgs, errors.New("broker unreachable"))
	if got := p.Failures(); got != 2 {
		t.Errorf("Failures() = %d, want 2", got)
	}
}
