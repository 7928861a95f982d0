// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is an adjustable Clock for deterministic age tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	s, err := Open(t.TempDir(), clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func TestPutGet(t *testing.T) {
	s, _ := newTestStore(t)

	key := Key("lookup", "doi", "doi:10.1000/xyz123")
	require.NoError(t, s.Put(key, []byte(`{"title":"x"}`)))

	value, age, ok, err := s.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"title":"x"}`), value)
	assert.Equal(t, time.Duration(0), age)
}

func TestGetMiss(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, ok, err := s.Get(Key("lookup", "doi", "doi:10.1000/absent"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAgeGrowsWithClock(t *testing.T) {
	s, clock := newTestStore(t)

	key := Key("q")
	require.NoError(t, s.Put(key, []byte("v")))

	clock.Advance(48 * time.Hour)
	_, age, ok, err := s.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 48*time.Hour, age)
}

func TestPutOverwrites(t *testing.T) {
	s, clock := newTestStore(t)

	key := Key("q")
	require.NoError(t, s.Put(key, []byte("old")))
	clock.Advance(time.Hour)
	require.NoError(t, s.Put(key, []byte("new")))

	value, age, ok, err := s.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
	assert.Equal(t, time.Duration(0), age)
}

func TestPrune(t *testing.T) {
	s, clock := newTestStore(t)

	require.NoError(t, s.Put(Key("old"), []byte("1")))
	clock.Advance(72 * time.Hour)
	require.NoError(t, s.Put(Key("fresh"), []byte("2")))

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, _, ok, err := s.Get(Key("old"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, ok, err = s.Get(Key("fresh"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInfo(t *testing.T) {
	s, clock := newTestStore(t)

	count, oldest, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, time.Duration(0), oldest)

	require.NoError(t, s.Put(Key("a"), []byte("1")))
	clock.Advance(10 * time.Minute)
	require.NoError(t, s.Put(Key("b"), []byte("2")))

	count, oldest, err = s.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 10*time.Minute, oldest)
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("ab"))
	assert.NotEqual(t, Key("a", "b"), Key("a", "c"))
}
