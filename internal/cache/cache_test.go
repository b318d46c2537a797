package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/logger"
)

func TestSetAndGet(t *testing.T) {
	c := NewMemory[string, int](logger.Get())

	c.Set("a", 1, time.Minute)
	val, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, val)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestExpiry(t *testing.T) {
	c := NewMemory[string, string](logger.Get())

	c.Set("short", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, found := c.Get("short")
	assert.False(t, found, "expired entry must miss")

	c.Set("forever", "v", 0)
	time.Sleep(2 * time.Millisecond)
	_, found = c.Get("forever")
	assert.True(t, found, "non-positive TTL never expires")
}

func TestDeleteAndClear(t *testing.T) {
	c := NewMemory[string, int](logger.Get())
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrFill(t *testing.T) {
	c := NewMemory[string, int](logger.Get())
	calls := 0
	fill := func() (int, error) {
		calls++
		return 42, nil
	}

	val, err := GetOrFill(c, "k", time.Minute, fill)
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	val, err = GetOrFill(c, "k", time.Minute, fill)
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls, "fresh entry must not refetch")
}

func TestGetOrFillError(t *testing.T) {
	c := NewMemory[string, int](logger.Get())
	wantErr := errors.New("backend down")

	_, err := GetOrFill(c, "k", time.Minute, func() (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.Len(), "errors are not cached")
}

func TestKeyDeterminism(t *testing.T) {
	k1 := Key("comics.list", 1, 12, "latest", []string{"Action", "Fantasy"}, "all")
	k2 := Key("comics.list", 1, 12, "latest", []string{"Fantasy", "Action"}, "all")
	assert.Equal(t, k1, k2, "genre order must not change the key")

	k3 := Key("comics.list", 2, 12, "latest", []string{"Action", "Fantasy"}, "all")
	assert.NotEqual(t, k1, k3)

	assert.NotEqual(t, Key("comics.featured"), Key("comics.latest"))
}
