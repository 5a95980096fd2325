package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Bus broadcasts cache invalidations between replicas.
type Bus interface {
	// Publish announces that the cache named topic changed.
	Publish(ctx context.Context, topic string) error
	// Subscribe registers fn to run when topic is announced by any replica.
	Subscribe(topic string, fn func())
}

// NewRedisClient creates a redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second) //nolint:mnd
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}

	return client, nil
}

// RedisBus is a Bus on a redis pub/sub channel. The message payload is the topic.
type RedisBus struct {
	client  *redis.Client
	channel string

	mu       sync.RWMutex
	handlers map[string][]func()
}

// NewRedisBus creates a bus on channel. Call Start to receive messages.
func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{
		client:   client,
		channel:  channel,
		handlers: make(map[string][]func()),
	}
}

// Publish implements Bus.
func (b *RedisBus) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, b.channel, topic).Err(); err != nil {
		return fmt.Errorf("cache: publish %s: %w", topic, err)
	}

	return nil
}

// Subscribe implements Bus.
func (b *RedisBus) Subscribe(topic string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], fn)
}

// Start subscribes to the channel and dispatches messages until ctx is done.
// It returns once the subscription is confirmed by redis.
func (b *RedisBus) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()

		return fmt.Errorf("cache: subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				b.dispatch(msg.Payload)
			}
		}
	}()

	log.Info().Str("channel", b.channel).Msg("cache invalidation bus started")

	return nil
}

func (b *RedisBus) dispatch(topic string) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	log.Debug().Str("topic", topic).Int("handlers", len(handlers)).Msg("cache invalidation received")

	for _, fn := range handlers {
		fn()
	}
}
