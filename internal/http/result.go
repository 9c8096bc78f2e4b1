package httpapi

import "seatplan/internal/models"

// Result 统一响应包装
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// ListResult 分页列表
type ListResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}
