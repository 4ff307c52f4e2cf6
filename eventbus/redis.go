// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes to pub/sub channels "<prefix>:<event name>".
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher connects to the redis server at addr.
func NewRedisPublisher(addr, password string, db int, prefix string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "connect redis")
	}
	return &RedisPublisher{client: client, prefix: prefix}, nil
}

// RedisChannel returns the channel of msg.
func RedisChannel(prefix string, msg *Message) string {
	return fmt.Sprintf("%s:%s", prefix, msg.Name)
}

func (p *RedisPublisher) Publish(ctx context.Context, msg *Message) error {
	data, err := msg.encode()
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, RedisChannel(p.prefix, msg), data).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
