package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const latestKey = "assessment:latest"

// Cache keeps recent runs in Redis so lookups do not need the database.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func runKey(id string) string {
	return fmt.Sprintf("assessment:run:%s", id)
}

// Put stores the run by id and, once finished, as the latest run.
func (c *Cache) Put(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, runKey(run.ID), data, c.ttl)
	if run.Status != StatusRunning {
		pipe.Set(ctx, latestKey, data, c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Cache) Get(ctx context.Context, id string) (*Run, error) {
	return c.load(ctx, runKey(id))
}

func (c *Cache) Latest(ctx context.Context) (*Run, error) {
	return c.load(ctx, latestKey)
}

func (c *Cache) load(ctx context.Context, key string) (*Run, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decoding cached run: %w", err)
	}
	return &run, nil
}
