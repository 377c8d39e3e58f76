package debate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	streamMaxLen = 10000
	streamTTL    = 24 * time.Hour
)

// StreamKey is the Redis stream holding a debate's generation events.
func StreamKey(debateID string) string {
	return fmt.Sprintf("debate:%s:generation", debateID)
}

// EventStream publishes generation events to Redis Streams and tails them for
// websocket clients.
type EventStream struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

func NewEventStream(rdb *redis.Client, log logrus.FieldLogger) *EventStream {
	return &EventStream{rdb: rdb, log: log}
}

// Publish appends an event to the debate's stream. The stream is capped and
// expires a day after its last event.
func (s *EventStream) Publish(ctx context.Context, debateID, eventType string, payload any) error {
	if s == nil || s.rdb == nil {
		return errors.New("Redis client not available")
	}
	event, err := NewEvent(debateID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	data, err := MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := StreamKey(debateID)
	pipe := s.rdb.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		Values: map[string]interface{}{"data": data},
		MaxLen: streamMaxLen,
		Approx: true,
	})
	pipe.Expire(ctx, key, streamTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// History returns every event still held for the debate.
func (s *EventStream) History(ctx context.Context, debateID string) ([]Event, error) {
	msgs, err := s.rdb.XRange(ctx, StreamKey(debateID), "-", "+").Result()
	if err != nil {
		return nil, err
	}
	return s.decode(msgs), nil
}

// Tail delivers events after fromID to fn until ctx is done or fn returns an
// error. fromID "0" replays the stream from the start, "$" only delivers new
// events.
func (s *EventStream) Tail(ctx context.Context, debateID, fromID string, fn func(Event) error) error {
	if fromID == "" {
		fromID = "0"
	}
	key := StreamKey(debateID)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		streams, err := s.rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{key, fromID},
			Count:   100,
			Block:   time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).WithField("stream", key).Warn("Failed to read generation events")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, event := range s.decode(stream.Messages) {
				if err := fn(event); err != nil {
					return err
				}
			}
			if n := len(stream.Messages); n > 0 {
				fromID = stream.Messages[n-1].ID
			}
		}
	}
}

func (s *EventStream) decode(msgs []redis.XMessage) []Event {
	events := make([]Event, 0, len(msgs))
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			s.log.WithField("id", msg.ID).Warn("Skipping stream entry without data field")
			continue
		}
		event, err := UnmarshalEvent(data)
		if err != nil {
			s.log.WithError(err).WithField("id", msg.ID).Warn("Skipping malformed stream entry")
			continue
		}
		event.ID = msg.ID
		events = append(events, *event)
	}
	return events
}
