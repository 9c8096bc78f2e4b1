package models

import "time"

// RoomResult 单个考场的最终状态（供报表/缓存/HTTP 使用）
type RoomResult struct {
	RoomName      string   `json:"room_name"`
	Door          DoorSide `json:"door"`
	Capacity      int      `json:"capacity"`
	OccupantCount int      `json:"occupant_count"`
	EmptyCount    int      `json:"empty_count"`
	FillRate      float64  `json:"fill_rate"` // 百分比 0-100
	RelaxedCount  int      `json:"relaxed_count"`

	// SubjectCounts 每个科目在该考场的人数
	SubjectCounts map[string]int `json:"subject_counts"`

	// Sections 区块 → 行 → 座位（nil 为空座）
	Sections map[Section][][]*Occupant `json:"sections"`
}

// CapacitySummary 一次排座的容量统计
type CapacitySummary struct {
	TotalStudents int     `json:"total_students"`
	TotalCapacity int     `json:"total_capacity"`
	Placed        int     `json:"placed"`
	UnplacedCount int     `json:"unplaced_count"`
	RelaxedCount  int     `json:"relaxed_count"`
	Utilization   float64 `json:"utilization"` // 百分比 0-100
	Shortfall     int     `json:"shortfall"`   // 总人数超过总容量的部分

	// FirstRoomSuffices 最大考场单独即可容纳全部考生，但选择了多个考场
	FirstRoomSuffices bool `json:"first_room_suffices"`
}

// PlacementResult 一次排座运行的结果
type PlacementResult struct {
	RunID     string          `json:"run_id"`
	Seed      int64           `json:"seed"`
	CreatedAt time.Time       `json:"created_at"`
	Rooms     []RoomResult    `json:"rooms"`
	Unplaced  []Unplaced      `json:"unplaced"`
	Summary   CapacitySummary `json:"summary"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// RunInfo 排座运行的列表项
type RunInfo struct {
	RunID         string    `json:"run_id"`
	Seed          int64     `json:"seed"`
	TotalStudents int       `json:"total_students"`
	Placed        int       `json:"placed"`
	UnplacedCount int       `json:"unplaced_count"`
	RelaxedCount  int       `json:"relaxed_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Info 提取列表项
func (r *PlacementResult) Info() RunInfo {
	return RunInfo{
		RunID:         r.RunID,
		Seed:          r.Seed,
		TotalStudents: r.Summary.TotalStudents,
		Placed:        r.Summary.Placed,
		UnplacedCount: r.Summary.UnplacedCount,
		RelaxedCount:  r.Summary.RelaxedCount,
		CreatedAt:     r.CreatedAt,
	}
}
