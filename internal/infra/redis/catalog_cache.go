package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogCache caches catalog reads in Redis as JSON and falls back to a loader on a miss.
// The list is stored under catalog:questions, each question under catalog:question:{id}.
type CatalogCache struct {
	client *redis.Client
	loader app.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

// DefaultTTL applies when the configured TTL is not positive; Redis would
// otherwise keep entries forever.
const DefaultTTL = 10 * time.Minute

func NewCatalogCache(client *redis.Client, loader app.QuestionLoader, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadQuestions returns the cached catalog, loading and storing it on a miss.
func (c *CatalogCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	var list []domain.Question
	if c.get(ctx, listKey(), &list) {
		return list, nil
	}

	result, err, _ := c.sf.Do(listKey(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached []domain.Question
		if c.get(ctx, listKey(), &cached) {
			return cached, nil
		}

		loaded, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, listKey(), loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// LoadQuestion returns one cached question. Misses of the backing store are not cached.
func (c *CatalogCache) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	key := questionKey(id)
	var q domain.Question
	if c.get(ctx, key, &q) {
		return q, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var cached domain.Question
		if c.get(ctx, key, &cached) {
			return cached, nil
		}

		loaded, err := c.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}
		c.set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// Invalidate deletes the list key and the keys of the given questions.
// A load already in flight may still write a stale value; the TTL bounds it.
func (c *CatalogCache) Invalidate(ctx context.Context, ids ...int64) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listKey())
	for _, id := range ids {
		keys = append(keys, questionKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

// get decodes the value at key into dst and reports whether it was a usable hit.
// Redis errors are treated as misses so reads keep working without the cache.
func (c *CatalogCache) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("catalog cache read %s: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *CatalogCache) set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
}

func listKey() string {
	return "catalog:questions"
}

func questionKey(id int64) string {
	return "catalog:question:" + strconv.FormatInt(id, 10)
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
