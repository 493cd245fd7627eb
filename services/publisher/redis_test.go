package publisher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamName(t *testing.T) {
	p := NewRedisPublisher(context.Background(), RedisOptions{Addr: "localhost:6379", StreamPrefix: "listings"})
	defer p.Close()

	assert.Equal(t, 1, p.opts.StreamCount, "non-positive counts fall back to one stream")
	assert.Equal(t, "listings:0", p.streamName(0))
	assert.Equal(t, "listings:7", p.streamName(7))
	assert.Equal(t, "b64_listings:krisha.kz", FieldKey("krisha.kz"))
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, RedisOptions{
		Addr:            "localhost:6379",
		StreamPrefix:    "test_listings_r",
		StreamCount:     1,
		StreamMaxLength: 10,
	})
	defer publisher.Close()

	// Create a subscriber to verify the message was published
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	if err := publisher.Ping(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	stream := "test_listings_r:0"
	err := client.XGroupCreateMkStream(ctx, stream, "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		t.Fatalf("failed to create group: %v", err)
	}

	messages := make(chan string, 1)

	go func() {
		result, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{stream, ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    2 * time.Second,
		}).Result()
		if err != nil || len(result) == 0 || len(result[0].Messages) == 0 {
			close(messages)
			return
		}
		value, _ := result[0].Messages[0].Values[FieldKey("krisha.kz")].(string)
		messages <- value
	}()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, publisher.Publish(FieldKey("krisha.kz"), []byte("test_message")))

	select {
	case msg, ok := <-messages:
		require.True(t, ok, "no message read from stream")
		// The message should be base64 encoded
		assert.Equal(t, "dGVzdF9tZXNzYWdl", msg) // base64 of "test_message"
	case <-time.After(3 * time.Second):
		t.Error("Timed out waiting for message")
	}

	assert.NoError(t, publisher.TrimStreams())
}
