package models

// PlacementRequest 一次排座请求（HTTP JSON 与 Redis Stream 请求共用）
type PlacementRequest struct {
	// Classes 参加考试的班级，每个班级一个科目
	Classes []ClassGroup `json:"classes"`
	// Rooms 选用的考场名称（必须在考场目录中）
	Rooms []string `json:"rooms"`
	// Seed 随机种子（可选）；相同种子 + 相同输入得到相同座位表
	Seed *int64 `json:"seed,omitempty"`
}

// TotalStudents 请求中的考生总数
func (r *PlacementRequest) TotalStudents() int {
	n := 0
	for _, c := range r.Classes {
		n += len(c.Students)
	}
	return n
}
