package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"seatplan/internal/models"

	"github.com/google/uuid"
)

// MemoryPlacementRepository 用于 DB 未启用时（单实例、进程内）
// 保存 JSON 副本，读写互不影响调用方持有的对象
type MemoryPlacementRepository struct {
	mu   sync.RWMutex
	runs map[string][]byte
	info []models.RunInfo
}

func NewMemoryPlacementRepository() *MemoryPlacementRepository {
	return &MemoryPlacementRepository{runs: map[string][]byte{}}
}

var _ PlacementRepository = (*MemoryPlacementRepository)(nil)

func (r *MemoryPlacementRepository) SaveRun(_ context.Context, result *models.PlacementResult) error {
	if result == nil {
		return fmt.Errorf("placement result is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	if _, exists := r.runs[result.RunID]; exists {
		return fmt.Errorf("placement run %s already exists", result.RunID)
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal placement result: %w", err)
	}
	r.runs[result.RunID] = payload
	r.info = append(r.info, result.Info())
	return nil
}

func (r *MemoryPlacementRepository) GetRun(_ context.Context, runID string) (*models.PlacementResult, error) {
	r.mu.RLock()
	payload, ok := r.runs[runID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var result models.PlacementResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode placement run %s: %w", runID, err)
	}
	return &result, nil
}

func (r *MemoryPlacementRepository) ListRuns(_ context.Context, page, size int) ([]models.RunInfo, int, error) {
	page, size = models.NormalizePage(page, size)

	r.mu.RLock()
	all := make([]models.RunInfo, len(r.info))
	copy(all, r.info)
	r.mu.RUnlock()

	// 最新在前；同一时间按保存顺序倒序
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := (page - 1) * size
	if start >= len(all) {
		return []models.RunInfo{}, len(all), nil
	}
	end := min(start+size, len(all))
	return all[start:end], len(all), nil
}
