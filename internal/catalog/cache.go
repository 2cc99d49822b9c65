// Package catalog caches the country, province and city lists used by the
// address step. Lists are fetched from the API only on a miss.
package catalog

import (
	"context"
	"fmt"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// Fetcher loads location lists from the remote API
type Fetcher interface {
	Countries(ctx context.Context, token string) ([]models.Country, error)
	Provinces(ctx context.Context, token string, countryID int64) ([]models.Province, error)
	Cities(ctx context.Context, token string, provinceID int64) ([]models.City, error)
}

// Cache serves location lists from a Store and fills it from a Fetcher.
// Two concurrent misses for the same key may both fetch; the last write wins.
type Cache struct {
	store   Store
	fetcher Fetcher
	token   string
	logger  *logging.SafeLogger
}

// New creates a cache that fetches with the given API token
func New(store Store, fetcher Fetcher, token string, logger *logging.SafeLogger) *Cache {
	return &Cache{store: store, fetcher: fetcher, token: token, logger: logger.Named("catalog")}
}

func (c *Cache) record(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	observability.CacheHits.WithLabelValues("catalog_"+name, result).Inc()
}

// storeFailed logs a cache read or write error. The cache never fails a
// lookup the API can still answer.
func (c *Cache) storeFailed(op string, err error) {
	c.logger.Warn("catalog store error", zap.String("operation", op), zap.Error(err))
}

// lookup serves one list from the store, falling back to fetch on a miss.
// Empty results are stored too so a country without provinces is not
// fetched again.
func lookup[T any](ctx context.Context, c *Cache, name, key string,
	get func(context.Context) ([]T, bool, error),
	fetch func(context.Context) ([]T, error),
	set func(context.Context, []T) error,
) ([]T, error) {
	ctx, span := utils.TraceCacheGet(ctx, key)
	defer span.End()

	cached, found, err := get(ctx)
	if err != nil {
		c.storeFailed("get_"+name, err)
	}
	utils.AddSpanAttribute(span, "cache.hit", found)
	c.record(name, found)
	if found {
		return cached, nil
	}

	items, err := fetch(ctx)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"catalog.list": name})
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if err := set(ctx, items); err != nil {
		c.storeFailed("set_"+name, err)
	}
	return items, nil
}

// Countries returns the country list
func (c *Cache) Countries(ctx context.Context) ([]models.Country, error) {
	return lookup(ctx, c, "countries", "countries",
		c.store.Countries,
		func(ctx context.Context) ([]models.Country, error) { return c.fetcher.Countries(ctx, c.token) },
		c.store.SetCountries,
	)
}

// Provinces returns the provinces of a country
func (c *Cache) Provinces(ctx context.Context, countryID int64) ([]models.Province, error) {
	return lookup(ctx, c, "provinces", fmt.Sprintf("provinces:%d", countryID),
		func(ctx context.Context) ([]models.Province, bool, error) { return c.store.Provinces(ctx, countryID) },
		func(ctx context.Context) ([]models.Province, error) { return c.fetcher.Provinces(ctx, c.token, countryID) },
		func(ctx context.Context, v []models.Province) error { return c.store.SetProvinces(ctx, countryID, v) },
	)
}

// Cities returns the cities of a province
func (c *Cache) Cities(ctx context.Context, provinceID int64) ([]models.City, error) {
	return lookup(ctx, c, "cities", fmt.Sprintf("cities:%d", provinceID),
		func(ctx context.Context) ([]models.City, bool, error) { return c.store.Cities(ctx, provinceID) },
		func(ctx context.Context) ([]models.City, error) { return c.fetcher.Cities(ctx, c.token, provinceID) },
		func(ctx context.Context, v []models.City) error { return c.store.SetCities(ctx, provinceID, v) },
	)
}
