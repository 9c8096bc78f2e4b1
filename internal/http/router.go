package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const placementsPath = "/api/v1/placements"

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes 健康检查
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}

// RegisterPlacementRoutes 注册考场目录与排座路由
func (r *Router) RegisterPlacementRoutes(h *PlacementHandler) {
	r.Handle("/api/v1/rooms", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListRooms(w, req)
	})

	// list / create
	r.Handle(placementsPath, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListPlacements(w, req)
		case http.MethodPost:
			h.CreatePlacement(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	// import / {id} / {id}/export
	r.Handle(placementsPath+"/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, placementsPath+"/")
		if rest == "import" {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.ImportPlacement(w, req)
			return
		}

		id, action, _ := strings.Cut(rest, "/")
		if id == "" || strings.Contains(action, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "":
			h.GetPlacement(w, req, id)
		case "export":
			h.ExportPlacement(w, req, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}
