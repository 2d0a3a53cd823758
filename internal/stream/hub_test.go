package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("session-1")
	defer hub.Unregister(client)
	other := hub.Register("session-2")
	defer hub.Unregister(other)

	hub.Broadcast("session-1", []byte("hello"))

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}

	select {
	case <-other.Send:
		t.Fatalf("message leaked to another session")
	default:
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("slow")
	defer hub.Unregister(client)

	for i := 0; i < cap(client.Send)+10; i++ {
		hub.Broadcast("slow", []byte("x"))
	}
	if len(client.Send) != cap(client.Send) {
		t.Fatalf("expected full buffer")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "hike:abc:live" {
		t.Fatalf("unexpected channel %s", ch)
	}
	if sessionIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected session id")
	}
	if sessionIDFromChannel("bad") != "" || sessionIDFromChannel("tracking:abc:broadcast") != "" {
		t.Fatalf("expected empty session id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("session-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
	// a second unregister must not panic on a closed channel
	hub.Unregister(client)
}

func TestHubRedisFanOut(t *testing.T) {
	s := miniredis.RunT(t)
	rdbA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbA.Close()
	rdbB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbB.Close()

	// two instances sharing one redis
	hubA := NewHub(rdbA, nil)
	defer hubA.Close()
	hubB := NewHub(rdbB, nil)
	defer hubB.Close()

	viewer := hubB.Register("session-redis")
	defer hubB.Unregister(viewer)

	hubA.Broadcast("session-redis", []byte("ping"))

	select {
	case msg := <-viewer.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for broadcast")
	}

	if err := rdbA.Publish(context.Background(), "hike:session-redis:live", "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	select {
	case msg := <-viewer.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message from redis")
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubRedisUnavailableFallsBackToLocal(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	server.Close()
	defer client.Close()

	hub := NewHub(client, nil)
	viewer := hub.Register("session-bad")
	defer hub.Unregister(viewer)

	hub.Broadcast("session-bad", []byte("ping"))
	select {
	case msg := <-viewer.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected local delivery without redis")
	}
}
