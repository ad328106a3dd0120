package httphandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// GroupResponse is the JSON representation of a registered group.
// Cursor is a string because notification IDs exceed the safe integer range
// of JavaScript clients.
type GroupResponse struct {
	Name          string `json:"name"`
	InstanceURL   string `json:"instance_url"`
	AcceptDMs     bool   `json:"accept_dms"`
	AcceptRetoots bool   `json:"accept_retoots"`
	Cursor        string `json:"cursor"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`

	// Schedule fields are populated once watch mode has polled the group.
	Tier       string `json:"tier,omitempty"`
	LastPolled string `json:"last_polled,omitempty"`
	NextPollAt string `json:"next_poll_at,omitempty"`
}

// RunResponse is the JSON representation of a run report.
type RunResponse struct {
	RunID        string `json:"run_id"`
	Group        string `json:"group"`
	StartedAt    string `json:"started_at,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	Scanned      int    `json:"scanned"`
	Boosted      int    `json:"boosted"`
	Reposted     int    `json:"reposted"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	CursorBefore string `json:"cursor_before"`
	CursorAfter  string `json:"cursor_after"`
	DryRun       bool   `json:"dry_run"`
	Error        string `json:"error,omitempty"`
}

// RepostResponse is the JSON representation of a repost log entry.
type RepostResponse struct {
	NotificationID string `json:"notification_id"`
	StatusID       string `json:"status_id"`
	Action         string `json:"action"`
	Text           string `json:"text,omitempty"`
	TextHTML       string `json:"text_html,omitempty"`
	OriginalHTML   string `json:"original_html,omitempty"`
	PublishedID    string `json:"published_id,omitempty"`
	RunID          string `json:"run_id"`
	Succeeded      bool   `json:"succeeded"`
	Error          string `json:"error,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toGroupResponse(g model.Group, sched application.ScheduleInfo, scheduled bool) GroupResponse {
	resp := GroupResponse{
		Name:          g.Name,
		InstanceURL:   g.InstanceURL,
		AcceptDMs:     g.Policy.AcceptDirectMessages,
		AcceptRetoots: g.Policy.AcceptPublicRetoots,
		Cursor:        formatCursor(g.Cursor),
		CreatedAt:     formatTime(g.CreatedAt),
		UpdatedAt:     formatTime(g.UpdatedAt),
	}
	if scheduled {
		resp.Tier = sched.Tier.String()
		resp.LastPolled = formatTime(sched.LastPolled)
		resp.NextPollAt = formatTime(sched.NextPollAt)
	}
	return resp
}

func toRunResponse(r model.RunReport) RunResponse {
	return RunResponse{
		RunID:        r.RunID,
		Group:        r.GroupName,
		StartedAt:    formatTime(r.StartedAt),
		FinishedAt:   formatTime(r.FinishedAt),
		DurationMS:   r.Duration().Milliseconds(),
		Scanned:      r.Scanned,
		Boosted:      r.Boosted,
		Reposted:     r.Reposted,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		CursorBefore: formatCursor(r.CursorBefore),
		CursorAfter:  formatCursor(r.CursorAfter),
		DryRun:       r.DryRun,
		Error:        r.Error,
	}
}

func toRepostResponse(r model.RepostRecord) RepostResponse {
	return RepostResponse{
		NotificationID: strconv.FormatInt(r.NotificationID, 10),
		StatusID:       r.StatusID,
		Action:         string(r.Action),
		Text:           r.Text,
		TextHTML:       RenderPreview(r.Text),
		OriginalHTML:   SanitizeHTML(r.OriginalContent),
		PublishedID:    r.PublishedID,
		RunID:          r.RunID,
		Succeeded:      r.Succeeded(),
		Error:          r.Error,
		CreatedAt:      formatTime(r.CreatedAt),
	}
}

func formatCursor(c model.Cursor) string {
	return strconv.FormatInt(int64(c), 10)
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
