// Package httphandler implements the JSON API driving adapter served in watch mode.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Poller triggers runs outside the regular schedule and exposes the schedule.
// It is satisfied by *application.PollService.
type Poller interface {
	RefreshGroup(ctx context.Context, groupName string) (model.RunReport, error)
	Schedules() map[string]application.ScheduleInfo
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	groups  driven.GroupStore
	runs    driven.RunStore
	reposts driven.RepostLog
	poller  Poller
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. poller may be
// nil, in which case refresh requests answer 503.
func NewHandler(
	groups driven.GroupStore,
	runs driven.RunStore,
	reposts driven.RepostLog,
	poller Poller,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		groups:  groups,
		runs:    runs,
		reposts: reposts,
		poller:  poller,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/groups", h.ListGroups)
	mux.HandleFunc("GET /api/v1/groups/{name}/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/groups/{name}/reposts", h.ListReposts)
	mux.HandleFunc("POST /api/v1/groups/{name}/refresh", h.RefreshGroup)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListGroups returns every registered group with its policy, cursor and, in
// watch mode, its polling schedule.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var schedules map[string]application.ScheduleInfo
	if h.poller != nil {
		schedules = h.poller.Schedules()
	}

	resp := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		sched, ok := schedules[g.Name]
		resp = append(resp, toGroupResponse(g, sched, ok))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRuns returns the most recent run reports of a group.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	name, ok := h.requireGroup(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	reports, err := h.runs.ListRecent(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("failed to list runs", "group", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunResponse, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, toRunResponse(rep))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListReposts returns the most recent repost log entries of a group.
func (h *Handler) ListReposts(w http.ResponseWriter, r *http.Request) {
	name, ok := h.requireGroup(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	records, err := h.reposts.ListRecent(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("failed to list reposts", "group", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RepostResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toRepostResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RefreshGroup runs a group immediately and returns the run report. A run
// that fails answers 502 with the report, so the caller sees how far it got.
func (h *Handler) RefreshGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := h.requireGroup(w, r)
	if !ok {
		return
	}
	if h.poller == nil {
		writeError(w, http.StatusServiceUnavailable, "polling is not running")
		return
	}

	report, err := h.poller.RefreshGroup(r.Context(), name)
	if err != nil {
		h.logger.Warn("manual refresh failed", "group", name, "error", err)
		if report.Error == "" {
			report.Error = err.Error()
		}
		if report.GroupName == "" {
			report.GroupName = name
		}
		writeJSON(w, http.StatusBadGateway, toRunResponse(report))
		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(report))
}

// requireGroup resolves the {name} path value and answers 404 for unknown
// groups.
func (h *Handler) requireGroup(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")

	if _, err := h.groups.Get(r.Context(), name); err != nil {
		if errors.Is(err, driven.ErrGroupNotFound) {
			writeError(w, http.StatusNotFound, "group not found")
			return "", false
		}
		h.logger.Error("failed to get group", "group", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}

	return name, true
}

// parseLimit reads the optional limit query parameter, defaulting to 20 and
// capped at 100.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}

	return min(limit, maxListLimit), true
}
