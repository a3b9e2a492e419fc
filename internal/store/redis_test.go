// ABOUTME: Tests for Redis store key namespacing and config handling
// ABOUTME: Connection-level behavior is covered by the shared blob codec tests

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisStore_KeyNamespacing(t *testing.T) {
	s := &RedisStore{keyPrefix: DefaultKeyPrefix}
	assert.Equal(t, "scry:sessions:abc-123", s.key("abc-123"))

	custom := &RedisStore{keyPrefix: "test:"}
	assert.Equal(t, "test:abc", custom.key("abc"))
}
