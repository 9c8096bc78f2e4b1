package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"seatplan/internal/models"

	"github.com/google/uuid"
)

// PostgresPlacementRepository placement_runs 表
type PostgresPlacementRepository struct {
	db *sql.DB
}

// NewPostgresPlacementRepository 创建排座结果 Repository
func NewPostgresPlacementRepository(db *sql.DB) *PostgresPlacementRepository {
	return &PostgresPlacementRepository{db: db}
}

// 确保实现了接口
var _ PlacementRepository = (*PostgresPlacementRepository)(nil)

func (r *PostgresPlacementRepository) SaveRun(ctx context.Context, result *models.PlacementResult) error {
	if result == nil {
		return fmt.Errorf("placement result is required")
	}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal placement result: %w", err)
	}

	query := `
		INSERT INTO placement_runs (
			run_id, seed, total_students, placed_count, unplaced_count, relaxed_count, result, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		result.RunID,
		result.Seed,
		result.Summary.TotalStudents,
		result.Summary.Placed,
		result.Summary.UnplacedCount,
		result.Summary.RelaxedCount,
		string(payload),
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert placement run: %w", err)
	}
	return nil
}

func (r *PostgresPlacementRepository) GetRun(ctx context.Context, runID string) (*models.PlacementResult, error) {
	if _, err := uuid.Parse(runID); err != nil {
		// 非法 uuid 直接视为不存在，避免数据库类型转换错误
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT result FROM placement_runs WHERE run_id = $1::uuid`,
		runID,
	).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get placement run: %w", err)
	}

	var result models.PlacementResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode placement run %s: %w", runID, err)
	}
	return &result, nil
}

func (r *PostgresPlacementRepository) ListRuns(ctx context.Context, page, size int) ([]models.RunInfo, int, error) {
	page, size = models.NormalizePage(page, size)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM placement_runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count placement runs: %w", err)
	}

	query := `
		SELECT
			run_id::text,
			seed,
			total_students,
			placed_count,
			unplaced_count,
			relaxed_count,
			created_at
		FROM placement_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list placement runs: %w", err)
	}
	defer rows.Close()

	items := []models.RunInfo{}
	for rows.Next() {
		var info models.RunInfo
		if err := rows.Scan(
			&info.RunID,
			&info.Seed,
			&info.TotalStudents,
			&info.Placed,
			&info.UnplacedCount,
			&info.RelaxedCount,
			&info.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan placement run: %w", err)
		}
		items = append(items, info)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate placement runs: %w", err)
	}
	return items, total, nil
}
