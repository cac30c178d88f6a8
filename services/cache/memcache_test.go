package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")
	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	err := mc.Set("page:test_key", []byte(`{"title":"x"}`), 2*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("page:test_key")
	assert.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, string(value))

	assert.NoError(t, mc.Delete("page:test_key"))

	_, err = mc.Get("page:test_key")
	assert.ErrorIs(t, err, ErrMiss)

	// Deleting twice is fine
	assert.NoError(t, mc.Delete("page:test_key"))
}

func TestMemcacheServiceUnreachable(t *testing.T) {
	mc := NewMemcacheService("127.0.0.1:1")
	assert.NotNil(t, mc.log)

	assert.Error(t, mc.Set("key", []byte("v"), time.Minute))
	_, err := mc.Get("key")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
