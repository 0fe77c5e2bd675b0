package sessions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the handful of commands the store
// issues. TTLs are recorded, not enforced; expire drops a key as if it had
// timed out.
type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	sets   map[string]map[string]struct{}
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
		sets:   map[string]map[string]struct{}{},
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	default:
		f.values[key] = fmt.Sprint(v)
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
		if _, ok := f.sets[k]; ok {
			delete(f.sets, k)
			n++
		}
		delete(f.ttls, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) exists(key string) bool {
	if _, ok := f.values[key]; ok {
		return true
	}
	return len(f.sets[key]) > 0
}

func (f *fakeRedis) expire(key string) {
	delete(f.values, key)
	delete(f.ttls, key)
}

func (f *fakeRedis) SetXX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.values[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if f.exists(k) {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.ttls[key]; ok || !f.exists(key) {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) ExpireGT(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	cur, ok := f.ttls[key]
	if !ok || !f.exists(key) || ttl <= cur {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if f.sets[key] == nil {
		f.sets[key] = map[string]struct{}{}
	}
	for _, m := range members {
		f.sets[key][fmt.Sprint(m)] = struct{}{}
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeRedis) SRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	for _, m := range members {
		delete(f.sets[key], fmt.Sprint(m))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeRedis) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	if f.err != nil {
		return redis.NewStringSliceResult(nil, f.err)
	}
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

// deleteAfterGet runs onGet once, right after the first read of a session
// key, to interleave another client between Touch's read and its write.
type deleteAfterGet struct {
	*fakeRedis
	onGet func()
}

func (d *deleteAfterGet) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := d.fakeRedis.Get(ctx, key)
	if fn := d.onGet; fn != nil {
		d.onGet = nil
		fn()
	}
	return cmd
}

func newSession(hash string, userID int64, now time.Time) *models.Session {
	return &models.Session{
		ID:         "sid-" + hash,
		TokenHash:  hash,
		UserID:     userID,
		ExpiresAt:  now.Add(time.Hour),
		LastSeenAt: now,
		CreatedAt:  now,
	}
}

func TestRedis_CreateFind(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newSession("h1", 7, now)))

	assert.Equal(t, time.Hour, rc.ttls["session:h1"])
	assert.Contains(t, rc.sets["user_sessions:7"], "h1")

	got, err := repo.Find(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "h1", got.TokenHash)
	assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))

	_, err = repo.Find(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedis_TouchExtendsTTL(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newSession("h1", 7, now)))

	later := now.Add(30 * time.Minute)
	require.NoError(t, repo.Touch(ctx, "h1", later, later.Add(2*time.Hour)))

	assert.Equal(t, 2*time.Hour, rc.ttls["session:h1"])
	got, err := repo.Find(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.LastSeenAt.Equal(later))

	assert.NoError(t, repo.Touch(ctx, "missing", later, later.Add(time.Hour)))
}

func TestRedis_TouchDoesNotResurrectDeletedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name   string
		logout func(repo *RedisRepository) error
	}{
		{"logout", func(repo *RedisRepository) error { return repo.Delete(ctx, "h1") }},
		{"account deleted", func(repo *RedisRepository) error { return repo.DeleteByUser(ctx, 7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &deleteAfterGet{fakeRedis: newFakeRedis()}
			repo := NewRedisRepository(rc)
			require.NoError(t, repo.Create(ctx, newSession("h1", 7, now)))

			rc.onGet = func() { require.NoError(t, tt.logout(repo)) }
			later := now.Add(time.Minute)
			require.NoError(t, repo.Touch(ctx, "h1", later, later.Add(time.Hour)))

			_, err := repo.Find(ctx, "h1")
			assert.ErrorIs(t, err, common.ErrorNotFound)
			assert.NotContains(t, rc.sets["user_sessions:7"], "h1")
		})
	}
}

func TestRedis_UserIndexExpiresWithSessions(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	long := newSession("a", 7, now)
	long.ExpiresAt = now.Add(3 * time.Hour)
	require.NoError(t, repo.Create(ctx, long))
	assert.Equal(t, 3*time.Hour, rc.ttls["user_sessions:7"])

	// a shorter session never shortens the index
	require.NoError(t, repo.Create(ctx, newSession("b", 7, now)))
	assert.Equal(t, 3*time.Hour, rc.ttls["user_sessions:7"])

	later := now.Add(time.Hour)
	require.NoError(t, repo.Touch(ctx, "b", later, later.Add(4*time.Hour)))
	assert.Equal(t, 4*time.Hour, rc.ttls["user_sessions:7"])
}

func TestRedis_CreatePrunesExpiredHashes(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newSession("old", 7, now)))
	require.NoError(t, repo.Create(ctx, newSession("live", 7, now)))
	rc.expire("session:old")

	require.NoError(t, repo.Create(ctx, newSession("new", 7, now)))

	assert.NotContains(t, rc.sets["user_sessions:7"], "old")
	assert.Contains(t, rc.sets["user_sessions:7"], "live")
	assert.Contains(t, rc.sets["user_sessions:7"], "new")
}

func TestRedis_TouchPastExpiryDeletes(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newSession("h1", 7, now)))
	require.NoError(t, repo.Touch(ctx, "h1", now, now.Add(-time.Second)))

	_, err := repo.Find(ctx, "h1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedis_Delete(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newSession("h1", 7, now)))
	require.NoError(t, repo.Delete(ctx, "h1"))
	require.NoError(t, repo.Delete(ctx, "h1"))

	_, err := repo.Find(ctx, "h1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NotContains(t, rc.sets["user_sessions:7"], "h1")
}

func TestRedis_DeleteByUser(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newSession("a", 7, now)))
	require.NoError(t, repo.Create(ctx, newSession("b", 7, now)))
	require.NoError(t, repo.Create(ctx, newSession("c", 8, now)))

	require.NoError(t, repo.DeleteByUser(ctx, 7))

	for _, h := range []string{"a", "b"} {
		_, err := repo.Find(ctx, h)
		assert.ErrorIs(t, err, common.ErrorNotFound, h)
	}
	_, err := repo.Find(ctx, "c")
	assert.NoError(t, err)

	n, err := repo.DeleteExpired(ctx, now)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedis_Errors(t *testing.T) {
	rc := newFakeRedis()
	repo := NewRedisRepository(rc)
	ctx := context.Background()
	rc.err = errors.New("conn refused")

	_, err := repo.Find(ctx, "h1")
	assert.ErrorContains(t, err, "redis error: conn refused")
	assert.Error(t, repo.Create(ctx, newSession("h1", 7, time.Now())))
	assert.Error(t, repo.DeleteByUser(ctx, 7))
	assert.Error(t, repo.Delete(ctx, "h1"))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "redis url")
}
