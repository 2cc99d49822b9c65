package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/sgeneral-iua/portal-sg/internal/session"
)

// Store holds location lists. Lookups report found=false on a miss; writes
// replace the list for the key.
type Store interface {
	Countries(ctx context.Context) ([]models.Country, bool, error)
	SetCountries(ctx context.Context, countries []models.Country) error
	Provinces(ctx context.Context, countryID int64) ([]models.Province, bool, error)
	SetProvinces(ctx context.Context, countryID int64, provinces []models.Province) error
	Cities(ctx context.Context, provinceID int64) ([]models.City, bool, error)
	SetCities(ctx context.Context, provinceID int64, cities []models.City) error
}

// MemoryStore keeps catalogs in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	countries []models.Country
	loaded    bool
	provinces map[int64][]models.Province
	cities    map[int64][]models.City
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		provinces: make(map[int64][]models.Province),
		cities:    make(map[int64][]models.City),
	}
}

func (m *MemoryStore) Countries(_ context.Context) ([]models.Country, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countries, m.loaded, nil
}

func (m *MemoryStore) SetCountries(_ context.Context, countries []models.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countries = countries
	m.loaded = true
	return nil
}

func (m *MemoryStore) Provinces(_ context.Context, countryID int64) ([]models.Province, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	provinces, ok := m.provinces[countryID]
	return provinces, ok, nil
}

func (m *MemoryStore) SetProvinces(_ context.Context, countryID int64, provinces []models.Province) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provinces[countryID] = provinces
	return nil
}

func (m *MemoryStore) Cities(_ context.Context, provinceID int64) ([]models.City, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cities, ok := m.cities[provinceID]
	return cities, ok, nil
}

func (m *MemoryStore) SetCities(_ context.Context, provinceID int64, cities []models.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[provinceID] = cities
	return nil
}

// RedisStore keeps catalogs under session:<sid>:catalog:* so they expire
// with the session and are dropped at sign-out.
type RedisStore struct {
	kv  redisclient.KV
	sid string
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store scoped to one session
func NewRedisStore(kv redisclient.KV, sid string, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, sid: sid, ttl: ttl}
}

func (r *RedisStore) key(parts ...string) string {
	return session.ScopedKey(r.sid, append([]string{"catalog"}, parts...)...)
}

func (r *RedisStore) Countries(ctx context.Context) ([]models.Country, bool, error) {
	var out []models.Country
	found, err := session.GetJSON(ctx, r.kv, r.key("countries"), &out)
	return out, found, err
}

func (r *RedisStore) SetCountries(ctx context.Context, countries []models.Country) error {
	return session.PutJSON(ctx, r.kv, r.key("countries"), countries, r.ttl)
}

func (r *RedisStore) Provinces(ctx context.Context, countryID int64) ([]models.Province, bool, error) {
	var out []models.Province
	found, err := session.GetJSON(ctx, r.kv, r.key("provinces", strconv.FormatInt(countryID, 10)), &out)
	return out, found, err
}

func (r *RedisStore) SetProvinces(ctx context.Context, countryID int64, provinces []models.Province) error {
	return session.PutJSON(ctx, r.kv, r.key("provinces", strconv.FormatInt(countryID, 10)), provinces, r.ttl)
}

func (r *RedisStore) Cities(ctx context.Context, provinceID int64) ([]models.City, bool, error) {
	var out []models.City
	found, err := session.GetJSON(ctx, r.kv, r.key("cities", strconv.FormatInt(provinceID, 10)), &out)
	return out, found, err
}

func (r *RedisStore) SetCities(ctx context.Context, provinceID int64, cities []models.City) error {
	return session.PutJSON(ctx, r.kv, r.key("cities", strconv.FormatInt(provinceID, 10)), cities, r.ttl)
}
