package models

// Pagination 列表分页信息
type Pagination struct {
	Size  int `json:"size"`
	Page  int `json:"page"`
	Count int `json:"count"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage 页码从 1 开始；size 超出范围时取默认值或上限
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
