package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/sgeneral-iua/portal-sg/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Countries(ctx context.Context, token string) ([]models.Country, error) {
	args := m.Called(ctx, token)
	countries, _ := args.Get(0).([]models.Country)
	return countries, args.Error(1)
}

func (m *mockFetcher) Provinces(ctx context.Context, token string, countryID int64) ([]models.Province, error) {
	args := m.Called(ctx, token, countryID)
	provinces, _ := args.Get(0).([]models.Province)
	return provinces, args.Error(1)
}

func (m *mockFetcher) Cities(ctx context.Context, token string, provinceID int64) ([]models.City, error) {
	args := m.Called(ctx, token, provinceID)
	cities, _ := args.Get(0).([]models.City)
	return cities, args.Error(1)
}

func name(s string) *string { return &s }

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(redisclient.NewMemoryClient(), "sid-1", time.Hour),
	}
}

func TestCache_ProvincesFetchOnlyOnMiss(t *testing.T) {
	for storeName, store := range stores(t) {
		t.Run(storeName, func(t *testing.T) {
			ctx := context.Background()
			fetcher := &mockFetcher{}
			fetcher.On("Provinces", mock.Anything, "tok", int64(1)).
				Return([]models.Province{{IDProvince: 14, ProvinceName: name("Córdoba")}}, nil).Once()

			cache := New(store, fetcher, "tok", nil)

			first, err := cache.Provinces(ctx, 1)
			require.NoError(t, err)
			second, err := cache.Provinces(ctx, 1)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, "Córdoba", *second[0].ProvinceName)
			fetcher.AssertNumberOfCalls(t, "Provinces", 1)
		})
	}
}

func TestCache_EmptyListIsCached(t *testing.T) {
	for storeName, store := range stores(t) {
		t.Run(storeName, func(t *testing.T) {
			ctx := context.Background()
			fetcher := &mockFetcher{}
			fetcher.On("Cities", mock.Anything, "tok", int64(99)).Return(nil, nil).Once()

			cache := New(store, fetcher, "tok", nil)

			cities, err := cache.Cities(ctx, 99)
			require.NoError(t, err)
			assert.NotNil(t, cities)
			assert.Empty(t, cities)

			cities, err = cache.Cities(ctx, 99)
			require.NoError(t, err)
			assert.Empty(t, cities)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCache_FetchErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	fetcher := &mockFetcher{}
	fetcher.On("Countries", mock.Anything, "tok").Return(nil, errors.New("boom")).Once()
	fetcher.On("Countries", mock.Anything, "tok").Return([]models.Country{{IDCountry: 1}}, nil).Once()

	cache := New(NewMemoryStore(), fetcher, "tok", nil)

	_, err := cache.Countries(ctx)
	require.Error(t, err)

	countries, err := cache.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 1)
	fetcher.AssertNumberOfCalls(t, "Countries", 2)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	fetcher := &mockFetcher{}
	fetcher.On("Cities", mock.Anything, "tok", int64(1)).Return([]models.City{{IDCity: 10}}, nil).Once()
	fetcher.On("Cities", mock.Anything, "tok", int64(2)).Return([]models.City{{IDCity: 20}}, nil).Once()

	cache := New(NewMemoryStore(), fetcher, "tok", nil)

	one, err := cache.Cities(ctx, 1)
	require.NoError(t, err)
	two, err := cache.Cities(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(10), one[0].IDCity)
	assert.Equal(t, int64(20), two[0].IDCity)
}

func TestRedisStore_KeysAreSessionScoped(t *testing.T) {
	ctx := context.Background()
	kv := redisclient.NewMemoryClient()
	store := NewRedisStore(kv, "sid-1", time.Hour)

	require.NoError(t, store.SetCities(ctx, 14, []models.City{{IDCity: 140}}))

	keys, err := kv.ScanKeys(ctx, session.ScopedKey("sid-1", "*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"session:sid-1:catalog:cities:14"}, keys)

	_, found, err := NewRedisStore(kv, "sid-2", time.Hour).Cities(ctx, 14)
	require.NoError(t, err)
	assert.False(t, found)
}
