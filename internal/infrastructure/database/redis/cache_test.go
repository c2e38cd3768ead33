package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

type cachedResult struct {
	Entity string `json:"entity"`
	Score  int    `json:"risk_score"`
}

type CacheMockSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheMockSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientWithUniversal(db, &RedisConfig{KeyPrefix: "g:"}, nil)
	s.cache = NewRedisCache(client, nil, WithPrefix("analysis:"))
}

func (s *CacheMockSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheMockSuite) TestGet_Hit() {
	want := cachedResult{Entity: "Ivan Petrov", Score: 69}
	raw, _ := json.Marshal(want)
	s.mock.ExpectGet("g:analysis:k1").SetVal(string(raw))

	var got cachedResult
	s.NoError(s.cache.Get(context.Background(), "k1", &got))
	s.Equal(want, got)
}

func (s *CacheMockSuite) TestGet_Miss() {
	s.mock.ExpectGet("g:analysis:k1").RedisNil()

	var got cachedResult
	err := s.cache.Get(context.Background(), "k1", &got)
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheMockSuite) TestGet_NullMarkerIsMiss() {
	s.mock.ExpectGet("g:analysis:k1").SetVal(nullMarker)

	var got cachedResult
	s.ErrorIs(s.cache.Get(context.Background(), "k1", &got), ErrCacheMiss)
}

func (s *CacheMockSuite) TestGet_Corrupt() {
	s.mock.ExpectGet("g:analysis:k1").SetVal("{not json")

	var got cachedResult
	err := s.cache.Get(context.Background(), "k1", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheMockSuite) TestGet_BackendError() {
	s.mock.ExpectGet("g:analysis:k1").SetErr(errors.New("READONLY"))

	var got cachedResult
	err := s.cache.Get(context.Background(), "k1", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.NotErrorIs(err, ErrCacheMiss)
}

func (s *CacheMockSuite) TestDelete() {
	s.mock.ExpectDel("g:analysis:a", "g:analysis:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()))
}

func TestCache_GetOrSet_NullMarkerWriteFailureIsLogged(t *testing.T) {
	db, mock := redismock.NewClientMock()
	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClientWithUniversal(db, &RedisConfig{KeyPrefix: "g:"}, nil)
	cache := NewRedisCache(client, logging.NewLoggerFromCore(core), WithPrefix("analysis:"))

	mock.ExpectGet("g:analysis:none").RedisNil()
	mock.ExpectSet("g:analysis:none", nullMarker, 30*time.Second).SetErr(errors.New("READONLY"))

	var dest cachedResult
	err := cache.GetOrSet(context.Background(), "none", &dest, time.Minute, func(context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())

	warned := logs.FilterMessage("Failed to set null marker in GetOrSet").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Equal(t, "none", warned[0].ContextMap()["key"])
}

func TestCacheMockSuite(t *testing.T) {
	suite.Run(t, new(CacheMockSuite))
}

func TestCache_SetAndGetWithTTL(t *testing.T) {
	mr, client := newMiniClient(t)
	cache := NewRedisCache(client, nil, WithPrefix("analysis:"), WithJitter(false))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedResult{Entity: "Acme", Score: 10}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("graphyte:analysis:k"))

	var got cachedResult
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "Acme", got.Entity)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestCache_DefaultTTLAndJitter(t *testing.T) {
	mr, client := newMiniClient(t)
	cache := NewRedisCache(client, nil, WithDefaultTTL(10*time.Minute))

	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	ttl := mr.TTL("graphyte:cache:k")
	assert.GreaterOrEqual(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 11*time.Minute)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	mr, client := newMiniClient(t)
	cache := NewRedisCache(client, nil, WithPrefix("analysis:"))
	ctx := context.Background()

	for _, k := range []string{"v1:a", "v1:b", "v2:a"} {
		require.NoError(t, cache.Set(ctx, k, k, time.Minute))
	}
	n, err := cache.DeleteByPrefix(ctx, "v1:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("graphyte:analysis:v2:a"))
	assert.False(t, mr.Exists("graphyte:analysis:v1:a"))
}

func TestCache_GetOrSet_LoadsOnce(t *testing.T) {
	_, client := newMiniClient(t)
	cache := NewRedisCache(client, nil)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return cachedResult{Entity: "Acme", Score: 42}, nil
	}

	var wg sync.WaitGroup
	results := make([]cachedResult, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, cache.GetOrSet(ctx, "k", &results[i], time.Minute, loader))
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r.Score)
	}

	var again cachedResult
	require.NoError(t, cache.GetOrSet(ctx, "k", &again, time.Minute, func(context.Context) (interface{}, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	}))
	assert.Equal(t, "Acme", again.Entity)
}

func TestCache_GetOrSet_NilAndError(t *testing.T) {
	mr, client := newMiniClient(t)
	cache := NewRedisCache(client, nil, WithNullCacheTTL(5*time.Second))
	ctx := context.Background()

	var dest cachedResult
	err := cache.GetOrSet(ctx, "none", &dest, time.Minute, func(context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 5*time.Second, mr.TTL("graphyte:cache:none"))

	boom := errors.New("boom")
	err = cache.GetOrSet(ctx, "err", &dest, time.Minute, func(context.Context) (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("graphyte:cache:err"))
}

//Personal.AI order the ending
