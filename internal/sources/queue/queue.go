// Package queue is an optional, purely additive notification fan-out: the
// orchestrator publishes a research.ancestor.finalized event per write so
// downstream consumers (e.g. the out-of-scope export pipeline) can react
// without the engine's own repository write path depending on them in any
// way. Modeled on correlator's segmentio/kafka-go producer usage.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// AncestorFinalized is the event payload published whenever the
// orchestrator persists an ancestor row.
type AncestorFinalized struct {
	JobID            string `json:"job_id"`
	AscendancyNumber int    `json:"ascendancy_number"`
	ConfidenceLevel  string `json:"confidence_level"`
	ConfidenceScore  int    `json:"confidence_score"`
	FinalizedAt      time.Time `json:"finalized_at"`
}

// Notifier publishes AncestorFinalized events to a Kafka topic. A nil
// *Notifier is valid and Publish on it is a no-op, so callers that never
// configure KAFKA_BROKERS can hold one unconditionally.
type Notifier struct {
	writer *kafka.Writer
}

// NewNotifier builds a Notifier writing to topic across the given
// comma-separated broker list.
func NewNotifier(brokers, topic string) *Notifier {
	addrs := strings.Split(brokers, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(addrs...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
	}
}

// Publish fans out one finalized-ancestor event. Failures are logged, not
// returned: this channel never affects a job's synchronous outcome.
func (n *Notifier) Publish(ctx context.Context, evt AncestorFinalized) {
	if n == nil || n.writer == nil {
		return
	}
	body, err := json.Marshal(evt)
	if err != nil {
		log.Printf("queue: marshal finalized event for job %s A=%d: %v", evt.JobID, evt.AscendancyNumber, err)
		return
	}
	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.JobID),
		Value: body,
		Time:  evt.FinalizedAt,
	})
	if err != nil {
		log.Printf("queue: publish finalized event for job %s A=%d: %v", evt.JobID, evt.AscendancyNumber, err)
	}
}

// Close releases the underlying writer's connections.
func (n *Notifier) Close() error {
	if n == nil || n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
