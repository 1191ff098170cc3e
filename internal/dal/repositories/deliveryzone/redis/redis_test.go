package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) List(ctx context.Context) ([]deliveryzone.Zone, error) {
	args := m.Called(ctx)
	return args.Get(0).([]deliveryzone.Zone), args.Error(1)
}

func (m *MockZoneRepository) Get(ctx context.Context, id string) (deliveryzone.Zone, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *MockZoneRepository) Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	args := m.Called(ctx, z)
	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *MockZoneRepository) Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	args := m.Called(ctx, z)
	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *MockZoneRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var centro = deliveryzone.Zone{ID: "centro", Name: "Centro", Cost: decimal.RequireFromString("50")}

func TestCachedZoneRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the repository", func(t *testing.T) {
		client := &MockRedisClient{}
		repo := &MockZoneRepository{}
		data, err := json.Marshal(centro)
		require.NoError(t, err)
		client.On("Get", ctx, "meatshop:zone:centro").Return(redis.NewStringResult(string(data), nil))

		z, err := NewCachedZoneRepository(repo, client).Get(ctx, "centro")
		require.NoError(t, err)
		assert.Equal(t, "Centro", z.Name)
		assert.True(t, z.Cost.Equal(centro.Cost))
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		client := &MockRedisClient{}
		repo := &MockZoneRepository{}
		client.On("Get", ctx, "meatshop:zone:centro").Return(redis.NewStringResult("", redis.Nil))
		client.On("Set", ctx, "meatshop:zone:centro", mock.Anything, mock.AnythingOfType("time.Duration")).
			Return(redis.NewStatusResult("OK", nil))
		repo.On("Get", ctx, "centro").Return(centro, nil)

		z, err := NewCachedZoneRepository(repo, client).Get(ctx, "centro")
		require.NoError(t, err)
		assert.Equal(t, "centro", z.ID)
		client.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("redis outage falls back to the repository", func(t *testing.T) {
		client := &MockRedisClient{}
		repo := &MockZoneRepository{}
		down := errors.New("dial tcp: connection refused")
		client.On("Get", ctx, "meatshop:zone:centro").Return(redis.NewStringResult("", down))
		client.On("Set", ctx, "meatshop:zone:centro", mock.Anything, mock.Anything).Return(redis.NewStatusResult("", down))
		repo.On("Get", ctx, "centro").Return(centro, nil)

		z, err := NewCachedZoneRepository(repo, client).Get(ctx, "centro")
		require.NoError(t, err)
		assert.Equal(t, "Centro", z.Name)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		client := &MockRedisClient{}
		repo := &MockZoneRepository{}
		client.On("Get", ctx, "meatshop:zone:sur").Return(redis.NewStringResult("", redis.Nil))
		repo.On("Get", ctx, "sur").Return(deliveryzone.Zone{}, deliveryzone.ErrZoneNotFound)

		_, err := NewCachedZoneRepository(repo, client).Get(ctx, "sur")
		require.ErrorIs(t, err, deliveryzone.ErrZoneNotFound)
		client.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCachedZoneRepository_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	client := &MockRedisClient{}
	repo := &MockZoneRepository{}

	changed := centro
	changed.Cost = decimal.RequireFromString("65")
	repo.On("Update", ctx, changed).Return(changed, nil)
	repo.On("Delete", ctx, "centro").Return(nil)
	client.On("Del", ctx, []string{"meatshop:zone:centro"}).Return(redis.NewIntResult(1, nil))

	cache := NewCachedZoneRepository(repo, client)
	_, err := cache.Update(ctx, changed)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(ctx, "centro"))

	client.AssertNumberOfCalls(t, "Del", 2)
}
