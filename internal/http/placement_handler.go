package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"seatplan/internal/catalog"
	"seatplan/internal/models"
	"seatplan/internal/service"

	"go.uber.org/zap"
)

const (
	maxRequestBytes = 4 << 20
	maxUploadBytes  = 32 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PlacementAPI 排座服务（service.PlacementService 实现）
type PlacementAPI interface {
	Catalog() *catalog.Catalog
	Run(ctx context.Context, req models.PlacementRequest) (*models.PlacementResult, error)
	Import(ctx context.Context, req service.ImportRequest) (*models.PlacementResult, error)
	Get(ctx context.Context, runID string) (*models.PlacementResult, error)
	List(ctx context.Context, page, size int) ([]models.RunInfo, models.Pagination, error)
	Export(ctx context.Context, runID string) ([]byte, error)
}

var _ PlacementAPI = (*service.PlacementService)(nil)

// PlacementHandler 排座 HTTP 接口
type PlacementHandler struct {
	svc    PlacementAPI
	logger *zap.Logger
}

func NewPlacementHandler(svc PlacementAPI, logger *zap.Logger) *PlacementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementHandler{svc: svc, logger: logger}
}

// RoomInfo 考场目录项
type RoomInfo struct {
	Name     string              `json:"name"`
	Door     models.DoorSide     `json:"door"`
	Capacity int                 `json:"capacity"`
	Grid     models.SeatGridSpec `json:"grid"`
}

// ListRooms GET /api/v1/rooms
func (h *PlacementHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	specs := h.svc.Catalog().All()
	rooms := make([]RoomInfo, 0, len(specs))
	for _, s := range specs {
		rooms = append(rooms, RoomInfo{Name: s.Name, Door: s.Door, Capacity: s.Capacity(), Grid: s.Grid})
	}
	writeJSON(w, http.StatusOK, Ok(rooms))
}

// CreatePlacement POST /api/v1/placements
func (h *PlacementHandler) CreatePlacement(w http.ResponseWriter, r *http.Request) {
	var req models.PlacementRequest
	if err := readBodyJSON(r, maxRequestBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	result, err := h.svc.Run(r.Context(), req)
	if err != nil {
		h.logError("Run placement failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// ImportPlacement POST /api/v1/placements/import
// multipart：students、rooms（必填）、subjects（可选）三个 xlsx 文件，
// assignments 为 {"班级":"科目"} JSON，seed 可选
func (h *PlacementHandler) ImportPlacement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to parse form"))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var assignments map[string]string
	if err := json.Unmarshal([]byte(r.FormValue("assignments")), &assignments); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("assignments must be a JSON object of class to subject"))
		return
	}
	seed, err := parseSeed(r.FormValue("seed"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("seed must be an integer"))
		return
	}

	students, err := formFile(r, "students", true)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	defer students.Close()
	rooms, err := formFile(r, "rooms", true)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	defer rooms.Close()
	subjects, err := formFile(r, "subjects", false)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	req := service.ImportRequest{
		Students:    students,
		Rooms:       rooms,
		Assignments: assignments,
		Seed:        seed,
	}
	if subjects != nil {
		defer subjects.Close()
		req.Subjects = subjects
	}

	result, err := h.svc.Import(r.Context(), req)
	if err != nil {
		h.logError("Import placement failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// ListPlacements GET /api/v1/placements?page=&size=
func (h *PlacementHandler) ListPlacements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, page, err := h.svc.List(r.Context(), parseInt(q.Get("page"), 1), parseInt(q.Get("size"), models.DefaultPageSize))
	if err != nil {
		h.logError("List placements failed", err)
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.RunInfo{}
	}
	writeJSON(w, http.StatusOK, Ok(ListResult[models.RunInfo]{Items: items, Pagination: page}))
}

// GetPlacement GET /api/v1/placements/{id}
func (h *PlacementHandler) GetPlacement(w http.ResponseWriter, r *http.Request, runID string) {
	result, err := h.svc.Get(r.Context(), runID)
	if err != nil {
		h.logError("Get placement failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// ExportPlacement GET /api/v1/placements/{id}/export
func (h *PlacementHandler) ExportPlacement(w http.ResponseWriter, r *http.Request, runID string) {
	data, err := h.svc.Export(r.Context(), runID)
	if err != nil {
		h.logError("Export placement failed", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=placement-%s.xlsx", runID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// logError 请求方错误只记 Debug
func (h *PlacementHandler) logError(msg string, err error) {
	if service.IsClientError(err) {
		h.logger.Debug(msg, zap.Error(err))
		return
	}
	h.logger.Error(msg, zap.Error(err))
}

// formFile 可选文件缺失时返回 (nil, nil)
func formFile(r *http.Request, field string, required bool) (multipart.File, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return nil, fmt.Errorf("file %s not found in request", field)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", field, err)
	}
	return file, nil
}
