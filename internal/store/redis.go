package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisKV 基于 Redis 的键值存储，所有键带命名空间前缀
type RedisKV struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
	ownClient bool
}

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis 连接 Redis 并测试连接
func OpenRedis(ctx context.Context, opts RedisOptions, namespace string, logger *zap.Logger) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	kv := NewRedisKV(client, namespace, logger)
	kv.ownClient = true
	return kv, nil
}

// NewRedisKV 使用已有客户端创建存储（客户端由调用方关闭）
func NewRedisKV(client *redis.Client, namespace string, logger *zap.Logger) *RedisKV {
	return &RedisKV{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// Client 底层 Redis 客户端（事件流复用同一连接）
func (s *RedisKV) Client() *redis.Client {
	return s.client
}

func (s *RedisKV) key(k string) string {
	return s.namespace + k
}

// Get 读取键值
func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

// Set 写入键值（不过期）
func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	s.logger.Debug("Stored key",
		zap.String("key", s.key(key)),
		zap.Int("bytes", len(value)),
	)
	return nil
}

// Delete 删除键
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close 关闭连接（仅关闭自己创建的客户端）
func (s *RedisKV) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}
