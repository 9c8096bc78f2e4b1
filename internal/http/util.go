package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"seatplan/internal/repository"
	"seatplan/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 请求方错误 400，运行记录不存在 404，其余 500
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsClientError(err):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrRunNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, Fail(err.Error()))
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseSeed 空字符串表示未指定
func parseSeed(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
