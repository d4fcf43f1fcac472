package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/engine"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/provider"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/server"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/service/mq"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/config"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/logger"
)

// @title Wallet Session API
// @version 1.0
// @description Browser-wallet session engine HTTP surface
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 组装签名端点 Source (配置驱动)
	source, closers := buildSource()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	registry := provider.NewRegistry(source, config.Global.Wallet.Embedded)

	// 3. 事件发布通道 (可选)
	producer := buildProducer()
	if producer != nil {
		defer producer.Close()
	}

	// 4. 会话引擎
	eng := engine.New(registry, engine.Options{
		Price:               engine.NewFixedPriceSource(config.Global.Wallet.Prices),
		Producer:            producer,
		Topic:               config.Global.MQ.Topic,
		ReceiptPollInterval: config.Global.Wallet.ReceiptPollInterval,
		ReceiptTimeout:      config.Global.Wallet.ReceiptTimeout,
	})

	// 5. 静默恢复: 只探测已授权账户, 绝不弹窗
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = eng.Resume(ctx)
		cancel()
	}

	// 6. HTTP 服务
	router := server.NewRouter(eng)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, router)
	app.Run()

	// 7. 退出前等待在途对账任务
	eng.Disconnect()
	eng.Wait()
}

// buildSource 按配置连接全部候选端点, 连不上的端点跳过
func buildSource() (*provider.StaticSource, []func()) {
	source := &provider.StaticSource{}
	var closers []func()

	for _, ep := range config.Global.Wallet.Endpoints {
		p, err := provider.DialRPC(ep.URL)
		if err != nil {
			logger.Warn("端点连接失败, 跳过",
				zap.String("name", ep.Name),
				zap.String("url", ep.URL),
				zap.Error(err))
			continue
		}
		closers = append(closers, p.Close)
		source.Endpoints = append(source.Endpoints, provider.Descriptor{
			Name:       ep.Name,
			Preferred:  ep.Preferred,
			Restricted: ep.Restricted,
			Provider:   p,
		})
	}

	if url := config.Global.Wallet.DefaultEndpoint; url != "" {
		p, err := provider.DialRPC(url)
		if err != nil {
			logger.Warn("默认端点连接失败", zap.String("url", url), zap.Error(err))
		} else {
			closers = append(closers, p.Close)
			source.Ambient = &provider.Descriptor{Name: "default", Provider: p}
		}
	}

	return source, closers
}

func buildProducer() mq.Producer {
	switch config.Global.MQ.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.Global.Redis.Addr,
			Password: config.Global.Redis.Password,
			DB:       config.Global.Redis.DB,
		})
		logger.Info("事件发布通道: Redis Streams", zap.String("addr", config.Global.Redis.Addr))
		return mq.NewRedisProducer(client)
	case "kafka":
		logger.Info("事件发布通道: Kafka", zap.Strings("brokers", config.Global.Kafka.Brokers))
		return mq.NewKafkaProducer(config.Global.Kafka.Brokers, config.Global.MQ.Topic)
	default:
		logger.Info("事件发布通道未配置, 生命周期事件仅写日志")
		return nil
	}
}
