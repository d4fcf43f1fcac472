package mq

import "context"

// Producer 生产者接口。发布是尽力而为的旁路通知,
// 失败只记录日志, 不影响会话状态机。
type Producer interface {
	// Publish 发送消息。key 用于分区排序, 传空字符串则随机分区。
	Publish(ctx context.Context, topic string, key string, payload []byte) error

	// Close 释放底层连接
	Close() error
}
