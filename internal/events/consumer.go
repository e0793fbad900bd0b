package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

// HandlerFunc processes an event published by another instance.
type HandlerFunc func(ctx context.Context, event GroupEvent) error

type EventConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
	origin   string
}

// NewEventConsumer subscribes to topic with a subscription owned by this instance alone,
// so every instance sees every event.
func NewEventConsumer(pulsarURL, topic, origin string) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:                       topic,
		SubscriptionName:            "group-cache-" + origin,
		Type:                        pulsar.Exclusive,
		SubscriptionInitialPosition: pulsar.SubscriptionPositionLatest,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &EventConsumer{client: client, consumer: consumer, origin: origin}, nil
}

// Run receives events until ctx is cancelled. Events from this instance are acknowledged and skipped.
func (c *EventConsumer) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("error receiving message")
			continue
		}

		if err := c.process(ctx, msg.Payload(), handle); err != nil {
			log.Error().Err(err).Str("message_id", msg.ID().String()).Msg("failed to process group event")
			c.consumer.Nack(msg)
			continue
		}
		c.consumer.Ack(msg)
	}
}

func (c *EventConsumer) process(ctx context.Context, payload []byte, handle HandlerFunc) error {
	var event GroupEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// A payload that cannot be decoded will never succeed, so it is dropped.
		log.Warn().Err(err).Msg("discarding malformed group event")
		return nil
	}
	if event.Origin == c.origin {
		return nil
	}
	return handle(ctx, event)
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}
