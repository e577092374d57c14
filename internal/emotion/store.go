package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultStateTTL = 24 * time.Hour

// RedisStore keeps room state as JSON with a sliding TTL.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("emotion: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("coparent.internal.emotion.store"),
		ttl:    ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, roomID string, state *RoomState) error {
	ctx, span := s.tracer.Start(ctx, "emotion.save_state")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("emotion: marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(roomID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("emotion: persist state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, roomID string) (*RoomState, error) {
	ctx, span := s.tracer.Start(ctx, "emotion.load_state")
	defer span.End()

	data, err := s.redis.Get(ctx, stateKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("emotion: load state: %w", err)
	}
	var state RoomState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("emotion: decode state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	ctx, span := s.tracer.Start(ctx, "emotion.delete_state")
	defer span.End()

	if err := s.redis.Del(ctx, stateKey(roomID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("emotion: delete state: %w", err)
	}
	return nil
}

func stateKey(roomID string) string {
	return fmt.Sprintf("emotion:room:%s", roomID)
}
