package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublishJSONToStream_ReadBackThroughGroup(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "seatplan:test", "g1"))
	// 重复创建不报错
	require.NoError(t, CreateConsumerGroup(ctx, client, "seatplan:test", "g1"))

	id, err := PublishJSONToStream(ctx, client, "seatplan:test", map[string]any{"run_id": "r-1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs, err := ReadFromStream(ctx, client, "seatplan:test", "g1", "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.JSONEq(t, `{"run_id":"r-1"}`, msgs[0].Values["data"].(string))

	require.NoError(t, Ack(ctx, client, "seatplan:test", "g1", id))
	pending, err := client.XPending(ctx, "seatplan:test", "g1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestPublishToStream_StringifiesValues(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	_, err := PublishToStream(ctx, client, "s", map[string]interface{}{
		"count":   3,
		"ok":      true,
		"payload": []string{"a"},
	})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, "s", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "3", entries[0].Values["count"])
	assert.Equal(t, "true", entries[0].Values["ok"])
	assert.Equal(t, `["a"]`, entries[0].Values["payload"])
}

func TestReadPendingFromStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "seatplan:test", "g1"))
	id, err := PublishJSONToStream(ctx, client, "seatplan:test", map[string]any{"run_id": "r-1"})
	require.NoError(t, err)

	pending, err := ReadPendingFromStream(ctx, client, "seatplan:test", "g1", "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "nothing delivered yet")

	msgs, err := ReadFromStream(ctx, client, "seatplan:test", "g1", "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// 未确认的消息可以被同一消费者再次读取，但不会作为新消息出现
	pending, err = ReadPendingFromStream(ctx, client, "seatplan:test", "g1", "c1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Contains(t, pending[0].Values["data"], "r-1")

	msgs, err = ReadFromStream(ctx, client, "seatplan:test", "g1", "c1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// 其他消费者看不到 c1 的 pending
	other, err := ReadPendingFromStream(ctx, client, "seatplan:test", "g1", "c2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, Ack(ctx, client, "seatplan:test", "g1", id))
	pending, err = ReadPendingFromStream(ctx, client, "seatplan:test", "g1", "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
