package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"seatplan/internal/catalog"
	"seatplan/internal/models"
	"seatplan/internal/notifier"
	"seatplan/internal/placement"
	"seatplan/internal/report"
	"seatplan/internal/repository"
	"seatplan/internal/roster"
	"seatplan/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidRequest 请求本身不合法（无考场、考场重复、工作簿内容不可用等）
var ErrInvalidRequest = errors.New("invalid placement request")

// ImportRequest 通过 Excel 工作簿发起排座（学生名单、可选科目表、考场列表）
type ImportRequest struct {
	Students io.Reader
	Subjects io.Reader // 可选
	Rooms    io.Reader

	// Assignments 班级 → 考试科目；只有出现在这里的班级参加本次排座
	Assignments map[string]string
	Seed        *int64
}

// PlacementService 排座服务：解析考场 → 运行引擎 → 汇总 → 持久化 / 缓存 / 通知
type PlacementService struct {
	catalog  *catalog.Catalog
	repo     repository.PlacementRepository
	cache    *store.ResultCache
	notifier notifier.Notifier
	logger   *zap.Logger

	defaultSeed *int64
	now         func() time.Time
}

// NewPlacementService cache、notif 可为 nil
func NewPlacementService(
	cat *catalog.Catalog,
	repo repository.PlacementRepository,
	cache *store.ResultCache,
	notif notifier.Notifier,
	defaultSeed *int64,
	logger *zap.Logger,
) *PlacementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementService{
		catalog:     cat,
		repo:        repo,
		cache:       cache,
		notifier:    notif,
		logger:      logger,
		defaultSeed: defaultSeed,
		now:         time.Now,
	}
}

// Catalog 当前使用的考场目录
func (s *PlacementService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Run 执行一次排座。未知考场返回 catalog.ErrRoomNotFound；容量不足不是错误。
func (s *PlacementService) Run(ctx context.Context, req models.PlacementRequest) (*models.PlacementResult, error) {
	if err := checkRoomNames(req.Rooms); err != nil {
		return nil, err
	}
	specs, unknown := s.catalog.Resolve(req.Rooms)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrRoomNotFound, strings.Join(unknown, ", "))
	}
	return s.run(ctx, req.Classes, specs, req.Seed, nil)
}

// Import 从工作簿读取名单后排座；考场列表中不在目录里的考场被忽略并记录警告
func (s *PlacementService) Import(ctx context.Context, req ImportRequest) (*models.PlacementResult, error) {
	if req.Students == nil || req.Rooms == nil {
		return nil, fmt.Errorf("%w: students and rooms workbooks are required", ErrInvalidRequest)
	}
	if len(req.Assignments) == 0 {
		return nil, fmt.Errorf("%w: no class selected", ErrInvalidRequest)
	}

	rosters, err := roster.ReadStudents(req.Students)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	var subjects map[string][]string
	if req.Subjects != nil {
		if subjects, err = roster.ReadSubjects(req.Subjects); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	roomNames, err := roster.ReadRoomNames(req.Rooms)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	classes, err := roster.BuildClassGroups(rosters, subjects, req.Assignments)
	if err != nil {
		return nil, err
	}

	var warnings []string
	seen := make(map[string]bool, len(roomNames))
	var names []string
	for _, name := range roomNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	specs, unknown := s.catalog.Resolve(names)
	for _, name := range unknown {
		s.logger.Warn("Room has no known structure, ignored", zap.String("room", name))
		warnings = append(warnings, fmt.Sprintf("room %s has no known structure and was ignored", name))
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: none of the listed rooms has a known structure", ErrInvalidRequest)
	}

	return s.run(ctx, classes, specs, req.Seed, warnings)
}

func (s *PlacementService) run(
	ctx context.Context,
	classes []models.ClassGroup,
	specs []catalog.RoomSpec,
	reqSeed *int64,
	warnings []string,
) (*models.PlacementResult, error) {
	rooms := make([]*placement.Room, 0, len(specs))
	for _, spec := range specs {
		rooms = append(rooms, placement.NewRoom(spec))
	}
	placement.SortRoomsByCapacity(rooms)

	seed := s.pickSeed(reqSeed)
	outcome, err := placement.NewSeededEngine(seed, s.logger).Run(classes, rooms)
	if err != nil {
		return nil, err
	}

	summary := Summarize(classes, outcome)
	roomResults, unplaced := buildResult(outcome)
	result := &models.PlacementResult{
		RunID:     uuid.NewString(),
		Seed:      seed,
		CreatedAt: s.now().UTC(),
		Rooms:     roomResults,
		Unplaced:  unplaced,
		Summary:   summary,
		Warnings:  append(warnings, summaryWarnings(summary, outcome)...),
	}

	if err := s.repo.SaveRun(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save placement run: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, result); err != nil {
			s.logger.Warn("Failed to cache placement run", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyCompleted(ctx, result)
	}

	s.logger.Info("Placement run completed",
		zap.String("run_id", result.RunID),
		zap.Int64("seed", seed),
		zap.Int("rooms", len(rooms)),
		zap.Int("students", summary.TotalStudents),
		zap.Int("placed", summary.Placed),
		zap.Int("unplaced", summary.UnplacedCount),
		zap.Int("relaxed", summary.RelaxedCount),
	)
	return result, nil
}

// Get 先查缓存，未命中再查 repository 并回填缓存
func (s *PlacementService) Get(ctx context.Context, runID string) (*models.PlacementResult, error) {
	if s.cache != nil {
		result, err := s.cache.Get(ctx, runID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Failed to read placement cache", zap.String("run_id", runID), zap.Error(err))
		}
	}

	result, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, result); err != nil {
			s.logger.Warn("Failed to cache placement run", zap.String("run_id", runID), zap.Error(err))
		}
	}
	return result, nil
}

// List 分页列出历史排座
func (s *PlacementService) List(ctx context.Context, page, size int) ([]models.RunInfo, models.Pagination, error) {
	page, size = models.NormalizePage(page, size)
	items, total, err := s.repo.ListRuns(ctx, page, size)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return items, models.Pagination{Page: page, Size: size, Count: total}, nil
}

// Export 生成排座结果 Excel
func (s *PlacementService) Export(ctx context.Context, runID string) ([]byte, error) {
	result, err := s.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	return report.ExportWorkbook(result)
}

// pickSeed 请求 seed > 配置 seed > 当前时间
func (s *PlacementService) pickSeed(reqSeed *int64) int64 {
	if reqSeed != nil {
		return *reqSeed
	}
	if s.defaultSeed != nil {
		return *s.defaultSeed
	}
	return s.now().UnixNano()
}

func checkRoomNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one room is required", ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("%w: room %s listed twice", ErrInvalidRequest, name)
		}
		seen[name] = true
	}
	return nil
}

// IsClientError 请求方错误（HTTP 400 / 不重试）
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, placement.ErrInvalidInput) ||
		errors.Is(err, catalog.ErrRoomNotFound) ||
		errors.Is(err, roster.ErrUnknownClass) ||
		errors.Is(err, roster.ErrUndefinedSubject) ||
		errors.Is(err, roster.ErrMissingColumns)
}
