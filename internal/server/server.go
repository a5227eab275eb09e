package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskstate/internal/metrics"
	"taskstate/internal/result"
	"taskstate/internal/state"
	"taskstate/internal/task"
	"taskstate/pkg/cache"
)

// jsonVersion tags the structured user task document.
const jsonVersion = 1

// viewCacheTTL bounds how long a rendered JSON view may be served without
// re-rendering. Mutations invalidate the cache anyway; the TTL is a backstop.
const viewCacheTTL = 2 * time.Second

type Server struct {
	mgr   *task.Manager
	views *cache.MemoryCache
}

func New(mgr *task.Manager) *Server {
	s := &Server{mgr: mgr, views: cache.NewMemory(viewCacheTTL)}
	mgr.SetOnChange(s.views.Invalidate)
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	return server.ListenAndServe()
}

// snapshot captures the manager state for one render call.
func (s *Server) snapshot() *state.UserTaskState {
	active, completed := s.mgr.Snapshot()
	return state.New(active, completed)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/user_tasks", s.handleUserTasks)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/tasks", s.handleStartTask)
	mux.HandleFunc("/tasks/complete", s.handleCompleteTask)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleUserTasks serves the current task state: an aligned text table by
// default, the JSON document when json=true. user_task_ids narrows the output
// to a comma-separated set of ids; an empty or absent parameter means
// everything.
func (s *Server) handleUserTasks(w http.ResponseWriter, r *http.Request) {
	rawIDs := r.URL.Query().Get("user_task_ids")
	filter, err := state.ParseFilter(rawIDs)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	if r.URL.Query().Get("json") == "true" {
		timer := prometheus.NewTimer(metrics.RenderSeconds.WithLabelValues("json"))
		defer timer.ObserveDuration()

		key := "json:" + rawIDs
		if doc, ok := s.views.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(doc))
			return
		}
		st := s.snapshot()
		doc, err := st.JSONString(jsonVersion, filter)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		s.views.Set(key, doc)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
		return
	}

	timer := prometheus.NewTimer(metrics.RenderSeconds.WithLabelValues("table"))
	defer timer.ObserveDuration()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.snapshot().WriteTable(w, filter)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	filter, err := state.ParseFilter(r.URL.Query().Get("user_task_ids"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	timer := prometheus.NewTimer(metrics.RenderSeconds.WithLabelValues(format))
	defer timer.ObserveDuration()

	b, err := result.NewExporter().Export(s.snapshot(), jsonVersion, format, filter)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write(b)
}

type startTaskReq struct {
	RequestURL     string `json:"request_url"`
	ClientIdentity string `json:"client_identity"`
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req startTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if req.RequestURL == "" {
		writeErr(w, http.StatusBadRequest, errStr("request_url is required"))
		return
	}
	if req.ClientIdentity == "" {
		req.ClientIdentity = r.RemoteAddr
	}
	info := s.mgr.Start(req.RequestURL, req.ClientIdentity)
	writeJSON(w, map[string]any{
		"user_task_id": info.ID.String(),
		"start_ms":     info.StartMs,
	})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := s.mgr.Complete(r.Context(), id); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type errStr string

func (e errStr) Error() string { return string(e) }
