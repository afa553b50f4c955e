package publisher

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strconv"

	"github.com/redis/go-redis/v9"

	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/pkg/errors"
)

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// stream returns the name of shard i
func (p *RedisPublisher) stream(i int) string {
	return p.streamPrefix + ":" + strconv.Itoa(i)
}

// Publish adds the listing as JSON to a random shard.
// If streamCount is 10, stream names are prefix:0 ~ prefix:9.
func (p *RedisPublisher) Publish(ctx context.Context, link string, listing crawler.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return errors.NewPublisher(link, "encode listing", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream(rand.IntN(p.streamCount)),
		Values: map[string]interface{}{
			"id":      listing.ID,
			"link":    link,
			"listing": string(data),
		},
	}).Err()
	if err != nil {
		return errors.NewPublisher(link, "xadd "+listing.ID, err)
	}
	return nil
}

// TrimStreams trims every shard to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	for i := range p.streamCount {
		if err := p.client.XTrimMaxLen(ctx, p.stream(i), int64(p.streamMaxLength)).Err(); err != nil {
			return errors.NewPublisher("", "trim "+p.stream(i), err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
