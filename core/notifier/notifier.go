// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package notifier publishes drink changes to a Kafka topic
package notifier

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/relabs-tech/coffeeshop/core"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// MessageWriter writes messages to a topic. *kafka.Writer implements it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the value of every published message
type Event struct {
	Resource  string          `json:"resource"`
	Operation core.Operation  `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Kafka is a core.Notifier which publishes every notification as one message
type Kafka struct {
	writer  MessageWriter
	timeout time.Duration
}

// New returns a notifier which writes to topic on brokers
func New(brokers []string, topic string) *Kafka {
	if len(brokers) == 0 {
		panic("brokers are missing")
	}
	return NewWithWriter(newWriter(brokers, topic))
}

// newWriter returns a writer which flushes every message right away. Notify
// writes one message per request, so waiting for a batch to fill only adds
// latency.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// NewWithWriter returns a notifier which writes to w
func NewWithWriter(w MessageWriter) *Kafka {
	return &Kafka{writer: w, timeout: 10 * time.Second}
}

// Notify publishes a drink change. Failures are logged with the request
// logger from ctx, the change itself is already committed.
func (k *Kafka) Notify(ctx context.Context, resource string, operation core.Operation, payload []byte) {
	rlog := logger.FromContext(ctx).WithField("resource", resource).WithField("operation", operation)
	value, err := json.Marshal(Event{
		Resource:  resource,
		Operation: operation,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		rlog.WithError(err).Errorln("cannot marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(resource),
		Value: value,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(operation)},
		},
	})
	if err != nil {
		rlog.WithError(err).Errorln("cannot publish event")
		return
	}
	rlog.Debugln("published event")
}

// Close flushes and closes the writer
func (k *Kafka) Close() error {
	return k.writer.Close()
}
