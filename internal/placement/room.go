package placement

import (
	"errors"
	"fmt"

	"seatplan/internal/catalog"
	"seatplan/internal/models"
)

// ErrNoSuchSeat 座位坐标不存在（调用方缺陷）
var ErrNoSuchSeat = errors.New("no such seat")

// Placement 一次入座记录
type Placement struct {
	Section  models.Section
	Row      int
	Col      int
	Occupant models.Occupant
	Relaxed  bool // 强制阶段入座（未检查同科目相邻）
}

// Room 一个考场在一次排座运行中的可变座位表
// 座位只会被填入，不会被清空或改写；非并发安全（一次运行内顺序调用）
type Room struct {
	name    string
	door    models.DoorSide
	grid    map[models.Section][][]*models.Occupant
	relaxed int

	capacity   int
	placements []Placement
}

// NewRoom 根据考场结构创建空座位表
func NewRoom(spec catalog.RoomSpec) *Room {
	r := &Room{
		name: spec.Name,
		door: spec.Door,
		grid: make(map[models.Section][][]*models.Occupant, len(spec.Grid)),
	}
	if r.door == "" {
		r.door = models.DoorLeft
	}
	for _, section := range models.SectionOrder {
		size, ok := spec.Grid[section]
		if !ok {
			continue
		}
		rows := make([][]*models.Occupant, max(size.Rows, 0))
		for i := range rows {
			rows[i] = make([]*models.Occupant, max(size.Cols, 0))
		}
		r.grid[section] = rows
		r.capacity += size.Capacity()
	}
	return r
}

// Name 考场名称
func (r *Room) Name() string { return r.name }

// Door 门的位置
func (r *Room) Door() models.DoorSide { return r.door }

// Capacity 各区块 rows×cols 之和
func (r *Room) Capacity() int { return r.capacity }

// OccupantCount 已入座人数
func (r *Room) OccupantCount() int { return len(r.placements) }

// EmptyCount 空座数
func (r *Room) EmptyCount() int { return r.capacity - len(r.placements) }

// FillRate 入座率（0-1），容量为 0 时返回 0
func (r *Room) FillRate() float64 {
	if r.capacity == 0 {
		return 0
	}
	return float64(len(r.placements)) / float64(r.capacity)
}

// RelaxedCount 强制阶段（放宽相邻约束）的入座次数
func (r *Room) RelaxedCount() int { return r.relaxed }

// Placements 按入座顺序返回记录副本
func (r *Room) Placements() []Placement {
	out := make([]Placement, len(r.placements))
	copy(out, r.placements)
	return out
}

// Seat 返回座位上的考生（空座为 nil）
func (r *Room) Seat(section models.Section, row, col int) (*models.Occupant, error) {
	if !r.inBounds(section, row, col) {
		return nil, fmt.Errorf("%w: room %s %s[%d][%d]", ErrNoSuchSeat, r.name, section, row, col)
	}
	occ := r.grid[section][row][col]
	if occ == nil {
		return nil, nil
	}
	cp := *occ
	return &cp, nil
}

// PlaceStudent 在本考场为考生安排座位，成功返回 true
//  1. 紧凑阶段：left → middle → right，逐行从左到右，取第一个空且相邻合法的座位
//  2. 强制阶段：同样顺序取第一个空座，忽略相邻约束，relaxed 计数 +1
//  3. 都没有空座：考场已满，返回 false，不做任何修改
func (r *Room) PlaceStudent(name, subject string) bool {
	if section, row, col, ok := r.scan(func(s models.Section, i, j int) bool {
		return IsValidSeat(r, s, i, j, subject)
	}); ok {
		r.put(section, row, col, name, subject, false)
		return true
	}

	if section, row, col, ok := r.scan(nil); ok {
		r.put(section, row, col, name, subject, true)
		r.relaxed++
		return true
	}

	return false
}

// scan 按固定顺序查找第一个空座；accept 为 nil 时接受任意空座
func (r *Room) scan(accept func(models.Section, int, int) bool) (models.Section, int, int, bool) {
	for _, section := range models.SectionOrder {
		rows, ok := r.grid[section]
		if !ok || len(rows) == 0 {
			continue
		}
		for i, line := range rows {
			for j, seat := range line {
				if seat != nil {
					continue
				}
				if accept == nil || accept(section, i, j) {
					return section, i, j, true
				}
			}
		}
	}
	return "", 0, 0, false
}

func (r *Room) put(section models.Section, row, col int, name, subject string, relaxed bool) {
	occ := models.Occupant{Name: name, Subject: subject}
	r.grid[section][row][col] = &occ
	r.placements = append(r.placements, Placement{
		Section:  section,
		Row:      row,
		Col:      col,
		Occupant: occ,
		Relaxed:  relaxed,
	})
}

func (r *Room) inBounds(section models.Section, row, col int) bool {
	rows, ok := r.grid[section]
	if !ok || row < 0 || row >= len(rows) {
		return false
	}
	return col >= 0 && col < len(rows[row])
}

// occupant 内部读取，不做拷贝；坐标越界返回 nil
func (r *Room) occupant(section models.Section, row, col int) *models.Occupant {
	if !r.inBounds(section, row, col) {
		return nil
	}
	return r.grid[section][row][col]
}

// hasSection 区块存在且至少有一行
func (r *Room) hasSection(section models.Section) bool {
	rows, ok := r.grid[section]
	return ok && len(rows) > 0
}

// Snapshot 导出考场最终状态（深拷贝）
func (r *Room) Snapshot() models.RoomResult {
	res := models.RoomResult{
		RoomName:      r.name,
		Door:          r.door,
		Capacity:      r.capacity,
		OccupantCount: r.OccupantCount(),
		EmptyCount:    r.EmptyCount(),
		FillRate:      r.FillRate() * 100,
		RelaxedCount:  r.relaxed,
		SubjectCounts: make(map[string]int),
		Sections:      make(map[models.Section][][]*models.Occupant, len(r.grid)),
	}
	for section, rows := range r.grid {
		out := make([][]*models.Occupant, len(rows))
		for i, line := range rows {
			out[i] = make([]*models.Occupant, len(line))
			for j, occ := range line {
				if occ != nil {
					cp := *occ
					out[i][j] = &cp
				}
			}
		}
		res.Sections[section] = out
	}
	for _, p := range r.placements {
		res.SubjectCounts[p.Occupant.Subject]++
	}
	return res
}
