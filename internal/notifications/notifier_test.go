package notifications

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishUser(t *testing.T) {
	// Notifier with nil Redis should return nil error (fail-open/noop)
	n := NewNotifier(nil)
	err := n.PublishUser(context.Background(), 1, "test payload")
	assert.NoError(t, err)
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestPostChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "post:events:5", PostChannel(5))

	postID, ok := ParsePostChannel("post:events:5")
	assert.True(t, ok)
	assert.Equal(t, uint(5), postID)

	_, ok = ParsePostChannel("notifications:user:5")
	assert.False(t, ok)
}

func TestNotifier_PatternSubscriber_ReceivesBroadcast(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got atomic.Value
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got.Store(channel + "|" + payload)
	}))

	assert.Eventually(t, func() bool {
		_ = n.PublishBroadcast(ctx, "hello")
		v, ok := got.Load().(string)
		return ok && v == "notifications:broadcast|hello"
	}, testEventuallyTimeout, testPollInterval)
}
