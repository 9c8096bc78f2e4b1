package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	httpapi "seatplan/internal/http"
	"seatplan/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError 服务端返回的失败响应（code=-1 或非 2xx 状态）
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("seatplan API error: %s (status: %d)", e.Message, e.StatusCode)
}

// ImportRequest 上传工作簿发起排座
type ImportRequest struct {
	Students    io.Reader
	Subjects    io.Reader // 可选
	Rooms       io.Reader
	Assignments map[string]string
	Seed        *int64
}

// Client seatplan HTTP API 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端；只对网络错误重试
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second). // 大考场导出可能较慢
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

// Rooms 考场目录
func (c *Client) Rooms(ctx context.Context) ([]httpapi.RoomInfo, error) {
	var out httpapi.Result[[]httpapi.RoomInfo]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/api/v1/rooms")
	if err := check(resp, err, out.Code, out.Message); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Run 提交 JSON 排座请求
func (c *Client) Run(ctx context.Context, req models.PlacementRequest) (*models.PlacementResult, error) {
	var out httpapi.Result[*models.PlacementResult]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/placements")
	if err := check(resp, err, out.Code, out.Message); err != nil {
		c.logger.Error("Placement request failed", zap.Error(err))
		return nil, err
	}

	c.logger.Info("Placement run created",
		zap.String("run_id", out.Result.RunID),
		zap.Int("placed", out.Result.Summary.Placed),
		zap.Int("unplaced", out.Result.Summary.UnplacedCount),
	)
	return out.Result, nil
}

// Import 上传学生名单、考场列表（及可选科目表）并排座
func (c *Client) Import(ctx context.Context, req ImportRequest) (*models.PlacementResult, error) {
	if req.Students == nil || req.Rooms == nil {
		return nil, fmt.Errorf("students and rooms workbooks are required")
	}
	assignments, err := json.Marshal(req.Assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assignments: %w", err)
	}

	form := map[string]string{"assignments": string(assignments)}
	if req.Seed != nil {
		form["seed"] = strconv.FormatInt(*req.Seed, 10)
	}

	var out httpapi.Result[*models.PlacementResult]
	r := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("students", "students.xlsx", req.Students).
		SetFileReader("rooms", "rooms.xlsx", req.Rooms).
		SetFormData(form).
		SetResult(&out).
		SetError(&out)
	if req.Subjects != nil {
		r.SetFileReader("subjects", "subjects.xlsx", req.Subjects)
	}

	resp, err := r.Post("/api/v1/placements/import")
	if err := check(resp, err, out.Code, out.Message); err != nil {
		c.logger.Error("Placement import failed", zap.Error(err))
		return nil, err
	}
	return out.Result, nil
}

// Get 获取排座结果
func (c *Client) Get(ctx context.Context, runID string) (*models.PlacementResult, error) {
	var out httpapi.Result[*models.PlacementResult]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", runID).
		SetResult(&out).
		SetError(&out).
		Get("/api/v1/placements/{id}")
	if err := check(resp, err, out.Code, out.Message); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// List 分页列出历史排座
func (c *Client) List(ctx context.Context, page, size int) (*httpapi.ListResult[models.RunInfo], error) {
	var out httpapi.Result[*httpapi.ListResult[models.RunInfo]]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("size", strconv.Itoa(size)).
		SetResult(&out).
		SetError(&out).
		Get("/api/v1/placements")
	if err := check(resp, err, out.Code, out.Message); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Export 下载排座结果 Excel
func (c *Client) Export(ctx context.Context, runID string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", runID).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Get("/api/v1/placements/{id}/export")
	if err != nil {
		return nil, fmt.Errorf("failed to call seatplan API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		var out httpapi.Result[any]
		_ = json.Unmarshal(resp.Body(), &out)
		return nil, apiError(resp, out.Message)
	}
	return resp.Body(), nil
}

// check 统一处理传输错误与失败响应
func check(resp *resty.Response, err error, code int, message string) error {
	if err != nil {
		return fmt.Errorf("failed to call seatplan API: %w", err)
	}
	if resp.IsError() || code != httpapi.ResultSuccess {
		return apiError(resp, message)
	}
	return nil
}

func apiError(resp *resty.Response, message string) *APIError {
	if message == "" {
		message = resp.Status()
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: message}
}
