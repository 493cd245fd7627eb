package publisher

import (
	"context"
	"encoding/base64"
	"math/rand"
	"strconv"

	"github.com/redis/go-redis/v9"

	"kzmarket/listingworker/logger"
	apperrors "kzmarket/listingworker/pkg/errors"
)

// RedisOptions configures the Redis stream publisher
type RedisOptions struct {
	Addr            string
	DB              int
	StreamPrefix    string
	StreamCount     int
	StreamMaxLength int64
}

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client *redis.Client
	ctx    context.Context
	opts   RedisOptions
	pick   func(n int) int
	log    *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, opts RedisOptions) *RedisPublisher {
	if opts.StreamCount <= 0 {
		opts.StreamCount = 1
	}

	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	return &RedisPublisher{
		client: client,
		ctx:    ctx,
		opts:   opts,
		pick:   rand.Intn,
		log:    logger.ForPublisher(),
	}
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping() error {
	if err := p.client.Ping(p.ctx).Err(); err != nil {
		return apperrors.NewPublisher("", "redis is unreachable at "+p.opts.Addr, err)
	}
	return nil
}

// Publish publishes a message to one of the partitioned Redis streams.
// The message is base64 encoded before publishing.
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)
	stream := p.streamName(p.pick(p.opts.StreamCount))

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}).Err()
	if err != nil {
		return apperrors.NewPublisher(key, "failed to publish to "+stream, err)
	}

	p.log.Debug().Str("stream", stream).Str("key", key).Int("bytes", len(message)).Msg("published")
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	streams, err := p.client.Keys(p.ctx, p.opts.StreamPrefix+":*").Result()
	if err != nil {
		return apperrors.NewPublisher("", "failed to list streams", err)
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(p.ctx, stream, p.opts.StreamMaxLength).Err(); err != nil {
			return apperrors.NewPublisher("", "failed to trim "+stream, err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// streamName returns "<prefix>:<n>"; with a count of 10 the streams are prefix:0 ~ prefix:9
func (p *RedisPublisher) streamName(n int) string {
	return p.opts.StreamPrefix + ":" + strconv.Itoa(n)
}
