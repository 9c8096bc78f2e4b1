package notifier

import (
	"context"
	"encoding/json"
	"time"

	rediscommon "seatplan/common/redis"
	"seatplan/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const EventPlacementCompleted = "placement.completed"

// PlacementCompleted 排座完成事件
type PlacementCompleted struct {
	EventType     string   `json:"event_type"`
	RunID         string   `json:"run_id"`
	Seed          int64    `json:"seed"`
	TotalStudents int      `json:"total_students"`
	Placed        int      `json:"placed"`
	UnplacedCount int      `json:"unplaced_count"`
	RelaxedCount  int      `json:"relaxed_count"`
	Rooms         []string `json:"rooms"`
	Timestamp     int64    `json:"timestamp"`
}

// NewPlacementCompleted 从排座结果生成事件
func NewPlacementCompleted(result *models.PlacementResult) PlacementCompleted {
	rooms := make([]string, 0, len(result.Rooms))
	for _, r := range result.Rooms {
		rooms = append(rooms, r.RoomName)
	}
	return PlacementCompleted{
		EventType:     EventPlacementCompleted,
		RunID:         result.RunID,
		Seed:          result.Seed,
		TotalStudents: result.Summary.TotalStudents,
		Placed:        result.Summary.Placed,
		UnplacedCount: result.Summary.UnplacedCount,
		RelaxedCount:  result.Summary.RelaxedCount,
		Rooms:         rooms,
		Timestamp:     time.Now().Unix(),
	}
}

// Notifier 排座完成通知
type Notifier interface {
	NotifyCompleted(ctx context.Context, result *models.PlacementResult)
}

// MQTTPublisher MQTT 发布接口（common/mqtt.Client 实现）
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// EventNotifier 发布到 Redis Stream 和（可选）MQTT 主题。
// 发布失败只记录日志，不影响排座结果。
type EventNotifier struct {
	redisClient *redis.Client
	stream      string

	mqtt      MQTTPublisher
	mqttTopic string
	mqttQoS   byte

	logger *zap.Logger
}

// NewEventNotifier redisClient 或 mqtt 为 nil 时跳过对应通道
func NewEventNotifier(redisClient *redis.Client, stream string, logger *zap.Logger) *EventNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventNotifier{redisClient: redisClient, stream: stream, logger: logger}
}

// WithMQTT 启用 MQTT 通道
func (n *EventNotifier) WithMQTT(pub MQTTPublisher, topic string, qos byte) *EventNotifier {
	n.mqtt = pub
	n.mqttTopic = topic
	n.mqttQoS = qos
	return n
}

var _ Notifier = (*EventNotifier)(nil)

func (n *EventNotifier) NotifyCompleted(ctx context.Context, result *models.PlacementResult) {
	if result == nil {
		return
	}
	event := NewPlacementCompleted(result)

	if n.redisClient != nil && n.stream != "" {
		id, err := rediscommon.PublishJSONToStream(ctx, n.redisClient, n.stream, event)
		if err != nil {
			n.logger.Warn("Failed to publish placement event to stream",
				zap.String("stream", n.stream),
				zap.String("run_id", event.RunID),
				zap.Error(err),
			)
		} else {
			n.logger.Debug("Published placement event",
				zap.String("stream", n.stream),
				zap.String("message_id", id),
				zap.String("run_id", event.RunID),
			)
		}
	}

	if n.mqtt != nil && n.mqttTopic != "" {
		payload, err := json.Marshal(event)
		if err != nil {
			n.logger.Warn("Failed to marshal placement event", zap.Error(err))
			return
		}
		if err := n.mqtt.Publish(n.mqttTopic, n.mqttQoS, false, payload); err != nil {
			n.logger.Warn("Failed to publish placement event to MQTT",
				zap.String("topic", n.mqttTopic),
				zap.String("run_id", event.RunID),
				zap.Error(err),
			)
		}
	}
}
