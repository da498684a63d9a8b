package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer publishes reservation lifecycle events as CloudEvents-style JSON
// envelopes. Confirmation emails and partner notifications are handled by
// external consumers of these topics.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	source   string
}

func NewProducer(brokers []string, topic, source string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: sp, topic: topic, source: source}, nil
}

// Publish wraps the payload in an event envelope and sends it keyed by the
// aggregate id so events for one reservation stay ordered.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            eventType + ".v1",
		"source":          p.source,
		"time":            time.Now().UTC(),
		"datacontenttype": "application/json",
		"data":            json.RawMessage(data),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte("application/cloudevents+json")},
		},
	})
	return err
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
