package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"seatplan/internal/catalog"
	"seatplan/internal/models"
)

// PostgresRoomLayoutRepository room_layouts 表
// layout_config 格式：{"left": {"rows": 5, "cols": 4}, "right": {"rows": 5, "cols": 4}}
type PostgresRoomLayoutRepository struct {
	db *sql.DB
}

func NewPostgresRoomLayoutRepository(db *sql.DB) *PostgresRoomLayoutRepository {
	return &PostgresRoomLayoutRepository{db: db}
}

var _ RoomLayoutRepository = (*PostgresRoomLayoutRepository)(nil)

func (r *PostgresRoomLayoutRepository) ListRoomLayouts(ctx context.Context) ([]catalog.RoomSpec, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT room_name, COALESCE(door, 'left'), layout_config
		FROM room_layouts
		ORDER BY room_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list room layouts: %w", err)
	}
	defer rows.Close()

	specs := []catalog.RoomSpec{}
	for rows.Next() {
		var (
			name   string
			door   string
			layout []byte
		)
		if err := rows.Scan(&name, &door, &layout); err != nil {
			return nil, fmt.Errorf("failed to scan room layout: %w", err)
		}

		var grid models.SeatGridSpec
		if err := json.Unmarshal(layout, &grid); err != nil {
			return nil, fmt.Errorf("invalid layout_config for room %s: %w", name, err)
		}
		specs = append(specs, catalog.RoomSpec{
			Name: name,
			Door: models.DoorSide(door),
			Grid: grid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room layouts: %w", err)
	}
	return specs, nil
}
