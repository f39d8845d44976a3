package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ludvigisaksen/PA-AI/common/id"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// redisStores keeps each table as a hash of id -> JSON record plus a sorted
// set of ids scored by creation millisecond. Ids created in the same
// millisecond tie on score and fall back to member order, which for
// snowflakes of equal length is creation order.
// id.Init must run first.
type redisStores struct {
	tasks    *redisTable[domain.Task]
	projects *redisTable[domain.Project]
}

func NewRedisStores(client *redis.Client, prefix string) Stores {
	return &redisStores{
		tasks:    newRedisTable[domain.Task](client, prefix, "tasks", taskRecord{}),
		projects: newRedisTable[domain.Project](client, prefix, "projects", projectRecord{}),
	}
}

func (s *redisStores) Tasks() TaskStore       { return s.tasks }
func (s *redisStores) Projects() ProjectStore { return s.projects }

// record exposes the id and timestamps of a stored value.
type record[T any] interface {
	id(v T) *string
	stamp(v T, id string, created, updated time.Time) T
	created(v T) *time.Time
}

type taskRecord struct{}

func (taskRecord) id(t domain.Task) *string         { return t.ID }
func (taskRecord) created(t domain.Task) *time.Time { return t.CreatedAt }
func (taskRecord) stamp(t domain.Task, id string, created, updated time.Time) domain.Task {
	t.ID, t.CreatedAt, t.UpdatedAt = &id, &created, &updated
	return t
}

type projectRecord struct{}

func (projectRecord) id(p domain.Project) *string         { return p.ID }
func (projectRecord) created(p domain.Project) *time.Time { return p.CreatedAt }
func (projectRecord) stamp(p domain.Project, id string, created, updated time.Time) domain.Project {
	p.ID, p.CreatedAt, p.UpdatedAt = &id, &created, &updated
	return p
}

type redisTable[T any] struct {
	client   *redis.Client
	rowsKey  string
	orderKey string
	rec      record[T]
}

func newRedisTable[T any](client *redis.Client, prefix, name string, rec record[T]) *redisTable[T] {
	return &redisTable[T]{
		client:   client,
		rowsKey:  fmt.Sprintf("%s:%s", prefix, name),
		orderKey: fmt.Sprintf("%s:%s:order", prefix, name),
		rec:      rec,
	}
}

func (t *redisTable[T]) List(ctx context.Context) ([]T, error) {
	ids, err := t.client.ZRange(ctx, t.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s order: %w", t.rowsKey, err)
	}
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := t.client.HMGet(ctx, t.rowsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.rowsKey, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Order entry without a row; skip it.
			continue
		}
		var row T
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", t.rowsKey, ids[i], err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (t *redisTable[T]) Upsert(ctx context.Context, row T) (T, error) {
	var zero T
	now := nowUTC()

	existing := t.rec.id(row)
	if existing == nil {
		rowID := id.New()
		row = t.rec.stamp(row, strconv.FormatInt(rowID, 10), now, now)
		if err := t.write(ctx, row, &redis.Z{Score: float64(id.Millis(rowID)), Member: *t.rec.id(row)}); err != nil {
			return zero, err
		}
		return row, nil
	}

	raw, err := t.client.HGet(ctx, t.rowsKey, *existing).Result()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s %s: %w", t.rowsKey, *existing, err)
	}
	var stored T
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return zero, fmt.Errorf("decoding %s %s: %w", t.rowsKey, *existing, err)
	}
	created := now
	if c := t.rec.created(stored); c != nil {
		created = *c
	}
	row = t.rec.stamp(row, *existing, created, now)
	if err := t.write(ctx, row, nil); err != nil {
		return zero, err
	}
	return row, nil
}

func (t *redisTable[T]) write(ctx context.Context, row T, order *redis.Z) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encoding %s row: %w", t.rowsKey, err)
	}
	rowID := *t.rec.id(row)
	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, t.rowsKey, rowID, data)
		if order != nil {
			pipe.ZAdd(ctx, t.orderKey, *order)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", t.rowsKey, rowID, err)
	}
	return nil
}
