// Package redis publishes activity feed entries on a Redis pub/sub channel
// for live feed subscribers.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/adapters/out/activitylog"
	"dispatch/internal/core/domain/model/activity"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultChannel = "dispatch:activity"

// Publisher is a ports.ActivityLog backed by Redis PUBLISH.
type Publisher struct {
	rdb     *goredis.Client
	channel string
}

func NewPublisher(rdb *goredis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// Connect creates a client for addr and checks it with PING.
func Connect(ctx context.Context, addr, channel string) (*Publisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewPublisher(rdb, channel), nil
}

func (p *Publisher) Channel() string {
	return p.channel
}

func (p *Publisher) Append(ctx context.Context, entry activity.Entry) error {
	raw, err := json.Marshal(activitylog.NewEvent(entry))
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}
	if err = p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
