package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage Redis Streams 消息
type StreamMessage struct {
	Stream string
	ID     string
	Values map[string]interface{}
}

// PublishToStream 发布消息到 Redis Streams
func PublishToStream(ctx context.Context, client *redis.Client, stream string, values map[string]interface{}) (string, error) {
	// 将 values 转换为字符串（Streams 字段只保存字符串）
	streamValues := make(map[string]interface{}, len(values))
	for k, v := range values {
		var strValue string
		switch val := v.(type) {
		case string:
			strValue = val
		case []byte:
			strValue = string(val)
		case int:
			strValue = fmt.Sprintf("%d", val)
		case int64:
			strValue = fmt.Sprintf("%d", val)
		case float64:
			strValue = fmt.Sprintf("%f", val)
		case bool:
			if val {
				strValue = "true"
			} else {
				strValue = "false"
			}
		default:
			jsonBytes, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			strValue = string(jsonBytes)
		}
		streamValues[k] = strValue
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: streamValues,
	}).Result()
}

// PublishJSONToStream 发布 JSON 消息到 Redis Streams（data + timestamp 两个字段）
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return PublishToStream(ctx, client, stream, map[string]interface{}{
		"data":      string(jsonBytes),
		"timestamp": time.Now().Unix(),
	})
}

// ReadFromStream 从 Redis Streams 读取新消息（消费者组，ID ">"）
// block <= 0 表示不阻塞
func ReadFromStream(ctx context.Context, client *redis.Client, stream string, consumerGroup string, consumer string, count int64, block time.Duration) ([]StreamMessage, error) {
	args := &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}
	if block <= 0 {
		// go-redis: Block < 0 不发送 BLOCK 参数
		args.Block = -1
	}
	return readGroup(ctx, client, args)
}

// ReadPendingFromStream 读取该消费者已投递但未确认的消息（ID "0"，不阻塞）
func ReadPendingFromStream(ctx context.Context, client *redis.Client, stream string, consumerGroup string, consumer string, count int64) ([]StreamMessage, error) {
	return readGroup(ctx, client, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
		Block:    -1,
	})
}

func readGroup(ctx context.Context, client *redis.Client, args *redis.XReadGroupArgs) ([]StreamMessage, error) {
	streams, err := client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return []StreamMessage{}, nil
		}
		return nil, err
	}

	var messages []StreamMessage
	for _, s := range streams {
		for _, msg := range s.Messages {
			messages = append(messages, StreamMessage{
				Stream: s.Stream,
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}

	return messages, nil
}

// Ack 确认消息
func Ack(ctx context.Context, client *redis.Client, stream, consumerGroup, messageID string) error {
	return client.XAck(ctx, stream, consumerGroup, messageID).Err()
}

// CreateConsumerGroup 创建消费者组，stream 不存在时一并创建；组已存在视为成功
func CreateConsumerGroup(ctx context.Context, client *redis.Client, stream string, groupName string) error {
	err := client.XGroupCreateMkStream(ctx, stream, groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
