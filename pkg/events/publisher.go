package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/japap-media/server/pkg/logging"
	"github.com/redis/go-redis/v9"
)

type Publisher interface {
	Publish(ctx context.Context, op uint8, v interface{}) error
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, op uint8, v interface{}) error {
	payload, err := Encode(op, v)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Subscribe relays raw payloads from a Redis channel until ctx is done.
func Subscribe(ctx context.Context, client *redis.Client, channel string) <-chan []byte {
	out := make(chan []byte, 64)
	pubsub := client.Subscribe(ctx, channel)
	go func() {
		defer close(out)
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
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Bus is an in-process Publisher. Every subscriber gets every payload.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]chan []byte
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan []byte)}
}

func (b *Bus) Publish(ctx context.Context, op uint8, v interface{}) error {
	payload, err := Encode(op, v)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- payload:
		default:
			logging.Log.WithField("subscriber", id).Warn("event bus subscriber is full, dropping event")
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context) <-chan []byte {
	id := uuid.New().String()
	ch := make(chan []byte, 64)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}
