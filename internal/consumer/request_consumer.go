package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "seatplan/common/redis"
	"seatplan/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PlacementRunner 执行排座（service.PlacementService 实现）
type PlacementRunner interface {
	Run(ctx context.Context, req models.PlacementRequest) (*models.PlacementResult, error)
}

// RequestConsumer 从 Redis Stream 消费排座请求
// 消息格式：data 字段为 PlacementRequest JSON（rediscommon.PublishJSONToStream 写入）
type RequestConsumer struct {
	redisClient  *redis.Client
	runner       PlacementRunner
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration

	// isPermanent 判断错误是否重试无意义（请求本身不合法）；这类消息直接确认
	isPermanent func(error) bool

	// drainPending 为 true 时先重新处理本消费者未确认的消息（启动时及处理失败后）
	drainPending bool
}

// NewRequestConsumer 创建请求消费者
func NewRequestConsumer(
	redisClient *redis.Client,
	runner PlacementRunner,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	isPermanent func(error) bool,
) *RequestConsumer {
	if isPermanent == nil {
		isPermanent = func(error) bool { return false }
	}
	return &RequestConsumer{
		redisClient:  redisClient,
		runner:       runner,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        2 * time.Second,
		isPermanent:  isPermanent,
		drainPending: true,
	}
}

// Start 启动消费循环，ctx 取消时返回
func (c *RequestConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Placement request consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费请求（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if _, err := c.consumeOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to consume placement requests",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

// consumeOnce 读取一批消息并处理，返回已确认的消息数。
// 有消息因临时错误处理失败时返回错误（由 Start 退避），这些消息留在 pending 中下次重试。
func (c *RequestConsumer) consumeOnce(ctx context.Context) (int, error) {
	messages, err := c.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	acked, failed := 0, 0
	var lastErr error
	for _, msg := range messages {
		err := c.processRequest(ctx, msg)
		switch {
		case err == nil:
		case IsMalformed(err) || c.isPermanent(err):
			c.logger.Warn("Rejected placement request",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		default:
			// 保留在 pending 列表中，不确认
			c.logger.Error("Failed to process placement request",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			failed++
			lastErr = err
			continue
		}

		if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			c.drainPending = true
			continue
		}
		acked++
	}

	if failed > 0 {
		c.drainPending = true
		return acked, fmt.Errorf("%d placement requests left pending: %w", failed, lastErr)
	}
	return acked, nil
}

// read pending 消息处理完之前不读取新消息
func (c *RequestConsumer) read(ctx context.Context) ([]rediscommon.StreamMessage, error) {
	if c.drainPending {
		messages, err := rediscommon.ReadPendingFromStream(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.batchSize)
		if err != nil {
			return nil, err
		}
		if len(messages) > 0 {
			return messages, nil
		}
		c.drainPending = false
	}
	return rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
		c.block,
	)
}

func (c *RequestConsumer) processRequest(ctx context.Context, msg rediscommon.StreamMessage) error {
	req, err := parseRequest(msg)
	if err != nil {
		return err
	}

	result, err := c.runner.Run(ctx, *req)
	if err != nil {
		return err
	}

	c.logger.Info("Processed placement request",
		zap.String("message_id", msg.ID),
		zap.String("run_id", result.RunID),
		zap.Int("unplaced", result.Summary.UnplacedCount),
	)
	return nil
}

// errMalformed 消息无法解析
type errMalformed struct {
	msg string
}

func (e *errMalformed) Error() string { return e.msg }

// IsMalformed 消息格式错误
func IsMalformed(err error) bool {
	var m *errMalformed
	return errors.As(err, &m)
}

func parseRequest(msg rediscommon.StreamMessage) (*models.PlacementRequest, error) {
	data, ok := msg.Values["data"].(string)
	if !ok || data == "" {
		return nil, &errMalformed{msg: fmt.Sprintf("message %s has no data field", msg.ID)}
	}
	var req models.PlacementRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, &errMalformed{msg: fmt.Sprintf("message %s: invalid request json: %v", msg.ID, err)}
	}
	return &req, nil
}
