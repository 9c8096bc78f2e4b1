package repository

import (
	"context"

	"seatplan/internal/catalog"
)

// MemoryRoomLayoutRepository 固定的考场结构列表（DB 未启用或测试时使用）
type MemoryRoomLayoutRepository struct {
	layouts []catalog.RoomSpec
}

func NewMemoryRoomLayoutRepository(layouts ...catalog.RoomSpec) *MemoryRoomLayoutRepository {
	return &MemoryRoomLayoutRepository{layouts: layouts}
}

var _ RoomLayoutRepository = (*MemoryRoomLayoutRepository)(nil)

func (r *MemoryRoomLayoutRepository) ListRoomLayouts(_ context.Context) ([]catalog.RoomSpec, error) {
	out := make([]catalog.RoomSpec, len(r.layouts))
	copy(out, r.layouts)
	return out, nil
}
