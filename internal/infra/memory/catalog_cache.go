package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

const listKey = "list"

// CatalogCache caches catalog reads with a TTL to avoid repeated store hits.
type CatalogCache struct {
	loader app.QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu         sync.RWMutex
	generation uint64
	list       *cachedEntry[[]domain.Question]
	questions  map[int64]cachedEntry[domain.Question]
}

type cachedEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func NewCatalogCache(loader app.QuestionLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader:    loader,
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: make(map[int64]cachedEntry[domain.Question]),
	}
}

// LoadQuestions returns the cached catalog, loading it on a miss.
func (c *CatalogCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if list, ok := c.cachedList(); ok {
		return list, nil
	}

	result, err, _ := c.sf.Do(listKey, func() (interface{}, error) {
		if list, ok := c.cachedList(); ok {
			return list, nil
		}
		gen := c.currentGeneration()
		list, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		if c.generation == gen {
			c.list = &cachedEntry[[]domain.Question]{value: list, expiresAt: expiresAt}
		}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

// LoadQuestion returns one cached question, loading it on a miss.
func (c *CatalogCache) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	if q, ok := c.cachedQuestion(id); ok {
		return q, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if q, ok := c.cachedQuestion(id); ok {
			return q, nil
		}
		gen := c.currentGeneration()
		q, err := c.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		if c.generation == gen {
			c.questions[id] = cachedEntry[domain.Question]{value: q, expiresAt: expiresAt}
		}
		c.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return cloneQuestion(result.(domain.Question)), nil
}

// Invalidate drops the cached list and the given questions. Loads that started
// before the call do not repopulate the cache.
func (c *CatalogCache) Invalidate(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.list = nil
	for _, id := range ids {
		delete(c.questions, id)
	}
	return nil
}

func (c *CatalogCache) cachedList() ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.list != nil && c.list.expiresAt.After(now) {
		return copyQuestions(c.list.value), true
	}
	return nil, false
}

func (c *CatalogCache) cachedQuestion(id int64) (domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.questions[id]; ok && entry.expiresAt.After(now) {
		return cloneQuestion(entry.value), true
	}
	return domain.Question{}, false
}

func (c *CatalogCache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		out[i] = cloneQuestion(q)
	}
	return out
}
