package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Job is the wire format of a queued task. Payload is opaque to the queue;
// handlers decode it themselves.
type Job struct {
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Queue is a generic at-least-once task queue.
type Queue interface {
	Enqueue(ctx context.Context, jobName string, payload interface{}) error
}

// KafkaQueue implements Queue on a kafka topic.
type KafkaQueue struct {
	writer *kafka.Writer
}

// NewKafkaQueue creates a queue producing onto the given topic.
func NewKafkaQueue(brokers []string, topic string) *KafkaQueue {
	return &KafkaQueue{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Enqueue publishes a job keyed by its name.
func (q *KafkaQueue) Enqueue(ctx context.Context, jobName string, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	job := Job{Name: jobName, Payload: raw, EnqueuedAt: time.Now()}
	value, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(jobName),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

// JobHandler processes one job payload.
type JobHandler func(ctx context.Context, payload json.RawMessage) error

// Worker consumes jobs from the queue topic and runs registered handlers.
// A handler error is logged and the worker moves on; kafka consumer-group
// offsets give at-least-once delivery.
type Worker struct {
	reader   *kafka.Reader
	handlers map[string]JobHandler
}

// NewWorker creates a worker consuming the given topic as part of groupID.
func NewWorker(brokers []string, topic, groupID string) *Worker {
	return &Worker{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		handlers: make(map[string]JobHandler),
	}
}

// Handle registers a handler for a job name. Not safe to call after Run.
func (w *Worker) Handle(jobName string, handler JobHandler) {
	w.handlers[jobName] = handler
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Println("[Worker] Consuming job queue...")
	for {
		message, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] Error reading message: %v", err)
			continue
		}

		var job Job
		if err := json.Unmarshal(message.Value, &job); err != nil {
			log.Printf("[Worker] Error unmarshaling job: %v", err)
			continue
		}

		handler, ok := w.handlers[job.Name]
		if !ok {
			log.Printf("[Worker] No handler for job %q, skipping", job.Name)
			continue
		}

		if err := handler(ctx, job.Payload); err != nil {
			log.Printf("[Worker] Job %q failed: %v", job.Name, err)
			continue
		}
		log.Printf("[Worker] Job %q completed successfully.", job.Name)
	}
}

// Close closes the underlying reader.
func (w *Worker) Close() error {
	return w.reader.Close()
}
