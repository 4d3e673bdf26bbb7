// Package dispatcher implements the recurring homework-reminder job: match
// users whose configured slot equals the current minute, gather outstanding
// homework, send one batched push per user, and prune dead device tokens.
package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/example/hwnotify/internal/push"
	"github.com/example/hwnotify/pkg/models"
)

// ErrCycleInProgress is returned when a cycle is triggered while the previous
// one has not finished. The late trigger is dropped, not queued.
var ErrCycleInProgress = errors.New("dispatch cycle already in progress")

// Policy selects how outstanding tasks are aggregated.
type Policy string

const (
	// PolicyAllOpen counts every incomplete task regardless of due date.
	PolicyAllOpen Policy = "all-open"
	// PolicyDueWindow counts only incomplete tasks due within the window.
	PolicyDueWindow Policy = "due-window"
)

// UserStore is the slice of the user store the dispatcher consumes.
type UserStore interface {
	UsersBySlot(slot models.Slot, hhmm string) ([]models.UserAccount, error)
	UpdatePushTokens(id string, tokens []string) error
}

// TaskStore is the slice of the task store the dispatcher consumes.
type TaskStore interface {
	IncompleteByUser(userID string) ([]models.HomeworkTask, error)
	IncompleteDueBefore(userID string, until time.Time) ([]models.HomeworkTask, error)
}

// Options tune a Dispatcher. Zero values fall back to defaults.
type Options struct {
	Location    *time.Location // reference TZ for slot matching; default UTC
	Policy      Policy         // default PolicyAllOpen
	DueWindow   time.Duration  // window for PolicyDueWindow; default 48h
	UserTimeout time.Duration  // per-user processing bound; default 30s
}

// Dispatcher runs one dispatch cycle per invocation. It owns no schedule of
// its own; a scheduler or HTTP trigger calls RunCycle.
type Dispatcher struct {
	users   UserStore
	tasks   TaskStore
	gateway push.Gateway
	log     *zap.Logger

	loc         *time.Location
	policy      Policy
	dueWindow   time.Duration
	userTimeout time.Duration

	running atomic.Bool
}

// New creates a dispatcher around the given collaborators.
func New(users UserStore, tasks TaskStore, gateway push.Gateway, log *zap.Logger, opts Options) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAllOpen
	}
	if opts.DueWindow <= 0 {
		opts.DueWindow = 48 * time.Hour
	}
	if opts.UserTimeout <= 0 {
		opts.UserTimeout = 30 * time.Second
	}
	return &Dispatcher{
		users:       users,
		tasks:       tasks,
		gateway:     gateway,
		log:         log,
		loc:         opts.Location,
		policy:      opts.Policy,
		dueWindow:   opts.DueWindow,
		userTimeout: opts.UserTimeout,
	}
}

// RunCycle executes one full dispatch cycle for the current wall-clock time.
// All matched users are processed concurrently; the call returns after every
// unit finishes. Per-user failures are logged and reported, never propagated.
func (d *Dispatcher) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	if !d.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer d.running.Store(false)

	now := time.Now().In(d.loc)
	return d.runCycleAt(ctx, now)
}

// runCycleAt is the clock-injected body of RunCycle, shared with tests.
func (d *Dispatcher) runCycleAt(ctx context.Context, now time.Time) (*models.CycleReport, error) {
	hhmm := now.Format("15:04")

	matched := d.matchUsers(now, hhmm)
	report := &models.CycleReport{
		Time:    hhmm,
		Matched: len(matched),
		Results: make([]models.UserResult, len(matched)),
	}
	if len(matched) == 0 {
		return report, nil
	}

	var wg sync.WaitGroup
	for i, user := range matched {
		wg.Add(1)
		go func(i int, user models.UserAccount) {
			defer wg.Done()
			uctx, cancel := context.WithTimeout(ctx, d.userTimeout)
			defer cancel()
			report.Results[i] = d.processUser(uctx, now, user)
		}(i, user)
	}
	wg.Wait()

	d.log.Info("dispatch cycle finished",
		zap.String("time", hhmm),
		zap.Int("matched", report.Matched),
		zap.Int("sent", report.Count(models.OutcomeSent)),
		zap.Int("skipped_no_tasks", report.Count(models.OutcomeNoTasks)),
		zap.Int("failed", report.Count(models.OutcomeFailed)),
	)
	return report, nil
}

// processUser runs the strictly sequential per-user pipeline:
// eligibility → aggregate → compose → send → reconcile.
func (d *Dispatcher) processUser(ctx context.Context, now time.Time, user models.UserAccount) models.UserResult {
	result := models.UserResult{UserID: user.ID}

	// Short-circuit before any task read; not an error.
	if !user.Notifiable() {
		result.Outcome = models.OutcomeNotEligible
		d.log.Debug("user not eligible", zap.String("user_id", user.ID))
		return result
	}

	tasks, err := d.outstandingTasks(user.ID, now)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Error = err.Error()
		d.log.Error("failed to load tasks", zap.String("user_id", user.ID), zap.Error(err))
		return result
	}
	if len(tasks) == 0 {
		result.Outcome = models.OutcomeNoTasks
		d.log.Debug("nothing outstanding", zap.String("user_id", user.ID))
		return result
	}

	subjects := distinctSubjects(tasks)
	title, body := Compose(user.DisplayName, subjects)

	sendResults, err := d.gateway.Send(ctx, push.Notification{
		Title:       title,
		Body:        body,
		CollapseKey: "homework-" + user.ID,
	}, user.PushTokens)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Error = err.Error()
		d.log.Error("push send failed",
			zap.String("user_id", user.ID),
			zap.String("backend", d.gateway.Name()),
			zap.Error(err),
		)
		return result
	}

	result.Subjects = subjects
	result.TokensNotified = len(user.PushTokens)

	for _, res := range sendResults {
		if res.Status == push.StatusFailed {
			// Transient or unknown; token kept, no retry this cycle.
			d.log.Warn("token delivery failed",
				zap.String("user_id", user.ID),
				zap.String("token", res.Token),
				zap.Error(res.Err),
			)
		}
	}

	removed, err := d.reconcileTokens(&user, sendResults)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Error = err.Error()
		d.log.Error("token reconciliation failed", zap.String("user_id", user.ID), zap.Error(err))
		return result
	}
	result.TokensRemoved = removed
	result.Outcome = models.OutcomeSent
	return result
}

// reconcileTokens removes permanently invalid tokens from the user's stored
// endpoint list. No write happens when nothing was invalidated.
func (d *Dispatcher) reconcileTokens(user *models.UserAccount, results []push.TokenResult) (int, error) {
	invalid := push.InvalidTokens(results)
	if len(invalid) == 0 {
		return 0, nil
	}

	kept := removeTokens(user.PushTokens, invalid)
	if err := d.users.UpdatePushTokens(user.ID, kept); err != nil {
		return 0, err
	}

	d.log.Info("removed invalid tokens",
		zap.String("user_id", user.ID),
		zap.Int("removed", len(invalid)),
		zap.Int("remaining", len(kept)),
	)
	return len(invalid), nil
}

// removeTokens returns stored minus invalid, preserving the original relative
// order of the surviving tokens.
func removeTokens(stored, invalid []string) []string {
	drop := make(map[string]bool, len(invalid))
	for _, t := range invalid {
		drop[t] = true
	}

	kept := make([]string, 0, len(stored))
	for _, t := range stored {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	return kept
}
