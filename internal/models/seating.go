package models

// Section 考场内的座位区块（左/中/右）
type Section string

const (
	SectionLeft   Section = "left"
	SectionMiddle Section = "middle"
	SectionRight  Section = "right"
)

// SectionOrder 扫描顺序：left → middle → right
var SectionOrder = []Section{SectionLeft, SectionMiddle, SectionRight}

// Valid 是否为已知区块
func (s Section) Valid() bool {
	switch s {
	case SectionLeft, SectionMiddle, SectionRight:
		return true
	}
	return false
}

// DoorSide 门的位置（仅用于渲染，不影响排座）
type DoorSide string

const (
	DoorLeft  DoorSide = "left"
	DoorRight DoorSide = "right"
)

// GridSize 区块的行列数
type GridSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Capacity rows×cols
func (g GridSize) Capacity() int {
	if g.Rows <= 0 || g.Cols <= 0 {
		return 0
	}
	return g.Rows * g.Cols
}

// SeatGridSpec 区块 → 行列数
type SeatGridSpec map[Section]GridSize

// Capacity 所有区块 rows×cols 之和
func (s SeatGridSpec) Capacity() int {
	total := 0
	for _, g := range s {
		total += g.Capacity()
	}
	return total
}

// Occupant 已入座考生：显示名 + 考试科目
type Occupant struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

// ClassGroup 一个班级：班级名、该班考试科目、学生名单（有序）
type ClassGroup struct {
	ClassName string   `json:"class_name"`
	Subject   string   `json:"subject"`
	Students  []string `json:"students"`
}

// Unplaced 未能安排座位的考生
type Unplaced struct {
	Student string `json:"student"`
	Subject string `json:"subject"`
}
