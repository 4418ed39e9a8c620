package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tripmate-route-service/internal/domain"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	source = "tripmate-route-service"

	// TypeRouteOptimized is the envelope type of domain.RouteOptimized.
	TypeRouteOptimized = "trip.route_optimized"
)

// Envelope wraps every published event in CloudEvents style metadata.
type Envelope struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

func NewEnvelope(eventType string, data any) (Envelope, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("new envelope: encode data: %w", err)
	}
	return Envelope{
		ID:              uuid.NewString(),
		Source:          source,
		SpecVersion:     "1.0",
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            b,
	}, nil
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publishes trip events to a single topic, keyed by trip id
// so events of one trip stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka publisher: topic is empty")
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}

	return newKafkaPublisher(w, topic, log), nil
}

func newKafkaPublisher(w messageWriter, topic string, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		log:    log.With(zap.String("component", "kafka_publisher"), zap.String("topic", topic)),
	}
}

func (p *KafkaPublisher) PublishRouteOptimized(ctx context.Context, evt domain.RouteOptimized) error {
	env, err := NewEnvelope(TypeRouteOptimized, evt)
	if err != nil {
		return err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("publish route optimized: encode envelope: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(evt.TripID.String()),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(env.Type)},
			{Key: "ce_id", Value: []byte(env.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish route optimized trip_id=%s: %w", evt.TripID, err)
	}

	p.log.Debug("event published",
		zap.String("event_type", env.Type),
		zap.String("event_id", env.ID),
		zap.String("trip_id", evt.TripID.String()),
	)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishRouteOptimized(context.Context, domain.RouteOptimized) error { return nil }
