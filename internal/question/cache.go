package question

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache provides Redis-backed question set caching to offload store reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SetCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func questionsKey(category, techName string) string {
	return strings.Join([]string{"questionset", category, techName}, ":")
}

func techsKey(category string) string {
	return strings.Join([]string{"questiontechs", category}, ":")
}

func (c *Cache) GetQuestions(ctx context.Context, category, techName string) ([]Question, bool, error) {
	var qs []Question
	ok, err := c.get(ctx, questionsKey(category, techName), &qs)
	return qs, ok, err
}

func (c *Cache) SetQuestions(ctx context.Context, category, techName string, qs []Question) error {
	return c.set(ctx, questionsKey(category, techName), qs)
}

func (c *Cache) GetTechNames(ctx context.Context, category string) ([]string, bool, error) {
	var names []string
	ok, err := c.get(ctx, techsKey(category), &names)
	return names, ok, err
}

func (c *Cache) SetTechNames(ctx context.Context, category string, names []string) error {
	return c.set(ctx, techsKey(category), names)
}

func (c *Cache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
