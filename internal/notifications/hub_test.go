package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(10))
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.Error(t, err)
}

func TestHub_BroadcastPost_OnlyReachesWatchers(t *testing.T) {
	hub := NewHub()

	watcher, err := hub.Register(1, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.WatchPost(watcher, 7)
	hub.BroadcastPost(7, `{"type":"comment_created"}`)

	select {
	case msg := <-watcher.Send:
		assert.Contains(t, string(msg), "comment_created")
	default:
		t.Fatal("watcher should have received the post event")
	}

	select {
	case <-bystander.Send:
		t.Fatal("bystander should not receive post events")
	default:
	}
}

func TestHub_UnregisterRemovesWatches(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	hub.WatchPost(client, 7)
	hub.UnregisterClient(client)

	hub.BroadcastPost(7, "late event")
	select {
	case <-client.Send:
		t.Fatal("unregistered client should not receive events")
	default:
	}
}

func TestHub_StartWiring_ForwardsPostEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	hub.WatchPost(client, 3)

	var received atomic.Bool
	go func() {
		msg := <-client.Send
		if string(msg) == "payload" {
			received.Store(true)
		}
	}()

	// PSubscribe setup races with the publish; retry until delivery.
	assert.Eventually(t, func() bool {
		_ = notifier.PublishPost(ctx, 3, "payload")
		return received.Load()
	}, testEventuallyTimeout, testPollInterval)
}
