package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// GroupRunner performs a single run for a group.
type GroupRunner interface {
	RunGroup(ctx context.Context, groupName string, opts RunOptions) (model.RunReport, error)
}

// refreshResult is the outcome of a manual refresh.
type refreshResult struct {
	report model.RunReport
	err    error
}

// refreshRequest represents a manual refresh trigger.
type refreshRequest struct {
	groupName string
	done      chan refreshResult
}

// PollService schedules relay runs for every registered group. Runs are
// strictly sequential: the polling loop is the only caller of the runner, and
// manual refreshes are funnelled through it, so two runs for the same group
// never overlap.
type PollService struct {
	runner    GroupRunner
	groups    driven.GroupStore
	interval  time.Duration
	adaptive  bool
	opts      RunOptions
	refreshCh chan refreshRequest
	now       func() time.Time

	mu        sync.Mutex
	schedules map[string]*groupSchedule
}

// NewPollService creates a new PollService with all required dependencies.
func NewPollService(
	runner GroupRunner,
	groups driven.GroupStore,
	interval time.Duration,
	adaptive bool,
	opts RunOptions,
) *PollService {
	return &PollService{
		runner:    runner,
		groups:    groups,
		interval:  interval,
		adaptive:  adaptive,
		opts:      opts,
		refreshCh: make(chan refreshRequest),
		now:       time.Now,
		schedules: make(map[string]*groupSchedule),
	}
}

// Start begins the polling loop. It polls every group immediately, then
// checks on every tick which groups are due. It also serves manual refresh
// requests. Start blocks until the context is canceled.
func (s *PollService) Start(ctx context.Context) {
	if _, err := s.pollDue(ctx, true); err != nil {
		slog.Error("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll service stopped")
			return
		case <-ticker.C:
			if _, err := s.pollDue(ctx, false); err != nil {
				slog.Error("poll cycle failed", "error", err)
			}
		case req := <-s.refreshCh:
			report, err := s.pollGroup(ctx, req.groupName)
			req.done <- refreshResult{report: report, err: err}
		}
	}
}

// RunAll runs every registered group once, in name order, regardless of its
// schedule. A failing group does not stop the others; its report carries the
// error.
func (s *PollService) RunAll(ctx context.Context) ([]model.RunReport, error) {
	return s.pollDue(ctx, true)
}

// RefreshGroup triggers an immediate run for one group, bypassing its
// schedule. It blocks until the run completes or the context is canceled, and
// requires Start to be running.
func (s *PollService) RefreshGroup(ctx context.Context, groupName string) (model.RunReport, error) {
	slog.Info("manual refresh requested", "group", groupName)

	done := make(chan refreshResult, 1)
	req := refreshRequest{
		groupName: groupName,
		done:      done,
	}

	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return model.RunReport{}, ctx.Err()
	}

	select {
	case res := <-done:
		return res.report, res.err
	case <-ctx.Done():
		return model.RunReport{}, ctx.Err()
	}
}

// Schedules returns a snapshot of the polling schedule of every group polled
// so far.
func (s *PollService) Schedules() map[string]ScheduleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]ScheduleInfo, len(s.schedules))
	for name, sched := range s.schedules {
		out[name] = sched.info()
	}
	return out
}

// pollDue runs every group that is due, or every group when force is set.
func (s *PollService) pollDue(ctx context.Context, force bool) ([]model.RunReport, error) {
	start := s.now()

	groups, err := s.groups.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var (
		reports  []model.RunReport
		failures int
	)
	for _, group := range groups {
		if ctx.Err() != nil {
			return reports, ctx.Err()
		}
		if !force && !s.isDue(group.Name) {
			continue
		}

		report, err := s.pollGroup(ctx, group.Name)
		if err != nil {
			failures++
		}
		reports = append(reports, report)
	}

	slog.Info("poll cycle complete",
		"groups", len(groups),
		"polled", len(reports),
		"errors", failures,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)

	return reports, nil
}

// pollGroup runs one group and updates its schedule. A group removed since
// the cycle listed it loses its schedule entry instead.
func (s *PollService) pollGroup(ctx context.Context, groupName string) (model.RunReport, error) {
	report, err := s.runner.RunGroup(ctx, groupName, s.opts)

	s.mu.Lock()
	if errors.Is(err, driven.ErrGroupNotFound) {
		delete(s.schedules, groupName)
		s.mu.Unlock()
		return report, err
	}
	sched, ok := s.schedules[groupName]
	if !ok {
		sched = &groupSchedule{}
		s.schedules[groupName] = sched
	}
	sched.update(s.now(), report.Scanned > 0, s.adaptive, s.interval)
	s.mu.Unlock()

	return report, err
}

func (s *PollService) isDue(groupName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[groupName]
	if !ok {
		return true
	}
	return sched.due(s.now(), s.interval)
}
