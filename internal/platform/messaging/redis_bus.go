package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

// RedisBus carries ledger events between processes over Redis Pub/Sub. The
// worker publishes relayed outbox rows and the API subscribes to feed
// metrics and the event stream.
type RedisBus struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBus(client *redis.Client, logger *slog.Logger) *RedisBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{client: client, logger: logger}
}

// ConnectRedis opens a client and checks the server answers.
func ConnectRedis(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Publish fails with ErrNoSubscribers when Redis reports zero receivers.
func (b *RedisBus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	receivers, err := b.client.Publish(ctx, topic, payload).Result()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	if receivers == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscribers, topic)
	}

	b.logger.Debug("event published",
		"event", "redis_bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"receivers", receivers,
	)
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, then runs
// handler for every event on topic until ctx is done.
func (b *RedisBus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	pubsub := b.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.dispatch(ctx, topic, consumerGroup, msg.Payload, handler)
			}
		}
	}()
	return nil
}

func (b *RedisBus) dispatch(
	ctx context.Context,
	topic string,
	consumerGroup string,
	payload string,
	handler func(context.Context, ports.EventEnvelope) error,
) {
	event, err := decodeEnvelope(payload)
	if err != nil {
		b.logger.Error("dropping undecodable event",
			"event", "redis_bus_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"error", err.Error(),
		)
		return
	}
	if err := handler(ctx, event); err != nil {
		b.logger.Error("consumer handler failed",
			"event", "redis_bus_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
	}
}

func decodeEnvelope(payload string) (ports.EventEnvelope, error) {
	var event ports.EventEnvelope
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return ports.EventEnvelope{}, err
	}
	if err := event.Validate(); err != nil {
		return ports.EventEnvelope{}, err
	}
	return event, nil
}
