package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/redis/go-redis/v9"
)

// WinsLostStream is the stream each finished result is appended to.
const WinsLostStream = "injuries.wins_lost." + model.Sport

// streamAdder is the slice of the Redis client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamPublisher publishes results to a Redis stream
type RedisStreamPublisher struct {
	client streamAdder
	closer func() error
	stream string
	logger *log.Logger
	now    func() time.Time
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client, logger *log.Logger) *RedisStreamPublisher {
	return newPublisher(client, client.Close, logger)
}

// NewRedisPublisher connects to redisURL and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL string, logger *log.Logger) (*RedisStreamPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return newPublisher(client, client.Close, logger), nil
}

func newPublisher(client streamAdder, closer func() error, logger *log.Logger) *RedisStreamPublisher {
	if logger == nil {
		logger = log.New(log.Writer(), "[publisher] ", log.LstdFlags)
	}
	return &RedisStreamPublisher{
		client: client,
		closer: closer,
		stream: WinsLostStream,
		logger: logger,
		now:    time.Now,
	}
}

// Close closes the Redis connection
func (p *RedisStreamPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

func (p *RedisStreamPublisher) Name() string {
	return "redis"
}

// Write appends the result summary to the stream.
func (p *RedisStreamPublisher) Write(ctx context.Context, result *model.Result) error {
	_, err := p.PublishWinsLost(ctx, result)
	return err
}

// PublishWinsLost appends result to the stream and returns the entry id.
func (p *RedisStreamPublisher) PublishWinsLost(ctx context.Context, result *model.Result) (string, error) {
	values, err := p.streamValues(result)
	if err != nil {
		return "", err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	p.logger.Printf("✓ Published season %d to %s (%s)", result.Season, p.stream, id)
	return id, nil
}

// summary is the stream payload: team totals and diagnostics without the
// per-stint breakdown.
type summary struct {
	Season     int              `json:"season"`
	Teams      []model.TeamLoss `json:"teams"`
	Gaps       []model.JoinGap  `json:"join_gaps,omitempty"`
	Skipped    int              `json:"skipped"`
	ComputedAt time.Time        `json:"computed_at"`
}

func (p *RedisStreamPublisher) streamValues(result *model.Result) (map[string]interface{}, error) {
	data, err := json.Marshal(summary{
		Season:     result.Season,
		Teams:      result.Teams,
		Gaps:       result.Gaps,
		Skipped:    result.Skipped,
		ComputedAt: result.ComputedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	return map[string]interface{}{
		"data":      string(data),
		"season":    result.Season,
		"timestamp": p.now().Unix(),
	}, nil
}
