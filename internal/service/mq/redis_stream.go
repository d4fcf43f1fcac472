package mq

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisProducer 通过 Redis Streams 实现 Producer 接口
type RedisProducer struct {
	client *redis.Client
}

func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// Publish 以 XADD 追加到 Stream (Stream 名即 topic)
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()

	if err != nil {
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

func (p *RedisProducer) Close() error {
	return p.client.Close()
}
