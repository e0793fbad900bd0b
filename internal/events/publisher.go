package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

// EventPublisher sends group events to a Pulsar topic.
type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
	origin   string
}

// NewEventPublisher initializes the Pulsar client and producer. Events are stamped with origin.
func NewEventPublisher(pulsarURL, topic, origin string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{Topic: topic})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	log.Info().Str("topic", topic).Msg("Pulsar client and producer initialized successfully")
	return &EventPublisher{client: client, producer: producer, origin: origin}, nil
}

// Publish sends the event keyed by group id.
func (p *EventPublisher) Publish(ctx context.Context, event GroupEvent) error {
	message, err := encodeEvent(event, p.origin, time.Now())
	if err != nil {
		return err
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.GroupID,
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	log.Debug().Str("group_id", event.GroupID).Str("action", event.Action).Msg("event sent to Pulsar")
	return nil
}

// Close closes the Pulsar producer and client.
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
	log.Info().Msg("Pulsar client and producer closed successfully")
}

func encodeEvent(event GroupEvent, origin string, now time.Time) ([]byte, error) {
	if event.Origin == "" {
		event.Origin = origin
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now.UTC()
	}

	message, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("could not serialize event payload: %w", err)
	}
	return message, nil
}
