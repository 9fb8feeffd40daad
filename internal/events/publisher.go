// Package events announces newly logged sleep records on a Kafka topic so
// other services can react without polling the record store.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yourname/sleepreport/internal"
)

const (
	EventRecordLogged = "record_logged"
	schemaVersion     = "v1"
)

// RecordLogged is the message body published after a record is saved.
type RecordLogged struct {
	Type          string    `json:"type"`
	SchemaVersion string    `json:"schema_version"`
	RecordID      string    `json:"record_id"`
	User          string    `json:"login"`
	Date          string    `json:"date"`
	SleepTime     string    `json:"sleep_time"`
	WakeTime      string    `json:"wake_time"`
	Wellbeing     string    `json:"wellbeing"`
	LoggedAt      time.Time `json:"logged_at"`
}

type Publisher interface {
	PublishRecordLogged(ctx context.Context, rec *internal.SleepRecord) error
	Close() error
}

type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per record, keyed by login so a user's
// events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger internal.Logger
}

var errNoBrokers = errors.New("events: at least one broker is required")

// NewPublisher returns a Kafka publisher, or a no-op one when cfg is disabled.
func NewPublisher(cfg Config, logger internal.Logger) (Publisher, error) {
	if !cfg.Enabled {
		logger.Info("events: kafka publisher disabled")
		return NoopPublisher{}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("events: topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errNoBrokers
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
		WriteTimeout:           5 * time.Second,
	}
	logger.Infof("events: publishing to topic %s via %s", cfg.Topic, strings.Join(cfg.Brokers, ","))
	return newKafkaPublisher(w, cfg.Topic, logger), nil
}

func newKafkaPublisher(w messageWriter, topic string, logger internal.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger}
}

func (p *KafkaPublisher) PublishRecordLogged(ctx context.Context, rec *internal.SleepRecord) error {
	body, err := json.Marshal(RecordLogged{
		Type:          EventRecordLogged,
		SchemaVersion: schemaVersion,
		RecordID:      rec.ID,
		User:          rec.User,
		Date:          rec.Date,
		SleepTime:     rec.SleepTime,
		WakeTime:      rec.WakeTime,
		Wellbeing:     string(rec.Wellbeing),
		LoggedAt:      rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("events: encoding record %s: %w", rec.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(rec.User),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventRecordLogged)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: writing to %s: %w", p.topic, err)
	}
	p.logger.Debugf("events: published %s for %s on %s", EventRecordLogged, rec.User, rec.Date)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishRecordLogged(context.Context, *internal.SleepRecord) error { return nil }
func (NoopPublisher) Close() error                                                    { return nil }
