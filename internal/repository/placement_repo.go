package repository

import (
	"context"
	"errors"

	"seatplan/internal/catalog"
	"seatplan/internal/models"
)

// ErrRunNotFound 排座记录不存在
var ErrRunNotFound = errors.New("placement run not found")

// PlacementRepository 排座结果持久化
type PlacementRepository interface {
	// SaveRun 保存一次排座结果；RunID 为空时分配新的 uuid
	SaveRun(ctx context.Context, result *models.PlacementResult) error
	// GetRun 按 RunID 读取，不存在返回 ErrRunNotFound
	GetRun(ctx context.Context, runID string) (*models.PlacementResult, error)
	// ListRuns 按创建时间倒序分页，返回列表项和总数
	ListRuns(ctx context.Context, page, size int) ([]models.RunInfo, int, error)
}

// RoomLayoutRepository 数据库中维护的考场结构（扩展内置目录）
type RoomLayoutRepository interface {
	ListRoomLayouts(ctx context.Context) ([]catalog.RoomSpec, error)
}
