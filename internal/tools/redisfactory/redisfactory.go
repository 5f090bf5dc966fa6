package redisfactory

import (
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// If one connection needs to be broken up new function should be introduced
// example: SearchGroupingGreenMotionClient()

type Factory struct {
	searchGroupingCache *redis.Client
	responsesCache      *redis.Client
	currencyCache       *redis.Client
}

func newClient(uri string) *redis.Client {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		panic(err)
	}

	opt.DialTimeout = 4 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	return redis.NewClient(opt)
}

func New() *Factory {
	return &Factory{
		searchGroupingCache: newClient(os.Getenv("SEARCH_GROUPING_REDIS_URI")),
		responsesCache:      newClient(os.Getenv("RESPONSES_CACHE_REDIS_URI")),
		currencyCache:       newClient(os.Getenv("CURRENCY_REDIS_URI")),
	}
}

func (f *Factory) SearchGroupingClient() *redis.Client {
	return f.searchGroupingCache
}

func (f *Factory) ResponsesCacheClient() *redis.Client {
	return f.responsesCache
}

func (f *Factory) CurrencyCacheClient() *redis.Client {
	return f.currencyCache
}
