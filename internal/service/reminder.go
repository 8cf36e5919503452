package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/push"
	"OnDuty/pkg/snowflake"
	"OnDuty/utils"
)

// RunSummary captures the outcome counters of one reminder run. One copy is
// persisted to the alert log per trigger execution; it is the only place
// administrators observe reminder activity.
type RunSummary struct {
	Kind       model.TriggerKind `json:"kind"`
	Date       string            `json:"date"`
	Candidates int               `json:"candidates"`
	Sent       int               `json:"sent"`
	Errors     int               `json:"errors"`

	// Populated for late-arrival runs only.
	Late []LateEmployee `json:"late,omitempty"`
}

// LateEmployee is one row of the admin-facing late roster.
type LateEmployee struct {
	Name       string `json:"name"`
	PFNumber   string `json:"pf_number"`
	Department string `json:"department"`
}

// ReminderEngine implements the three fixed-time notification runs. All runs
// share one shape: enumerate candidates, fan the per-employee units out over
// a bounded worker pool, join all of them, then persist one run summary.
type ReminderEngine struct {
	directory  repository.DirectoryStore
	sessions   repository.AttendanceStore
	alerts     repository.AlertLog
	dispatcher push.Client
	workers    int
	now        func() time.Time
}

func NewReminderEngine(directory repository.DirectoryStore, sessions repository.AttendanceStore, alerts repository.AlertLog, dispatcher push.Client, workers int) *ReminderEngine {
	if workers <= 0 {
		workers = 1
	}
	return &ReminderEngine{
		directory:  directory,
		sessions:   sessions,
		alerts:     alerts,
		dispatcher: dispatcher,
		workers:    workers,
		now:        localNow,
	}
}

// RunClockInReminder notifies active staff who have no attendance session yet
// for the date.
func (e *ReminderEngine) RunClockInReminder(ctx context.Context, date string) (*RunSummary, error) {
	return e.runAbsenceReminder(ctx, date, model.TriggerClockInReminder)
}

// RunLateArrivalAlert re-checks the same population after the grace period and
// additionally collects the late roster for administrators.
func (e *ReminderEngine) RunLateArrivalAlert(ctx context.Context, date string) (*RunSummary, error) {
	return e.runAbsenceReminder(ctx, date, model.TriggerLateArrival)
}

func (e *ReminderEngine) runAbsenceReminder(ctx context.Context, date string, kind model.TriggerKind) (*RunSummary, error) {
	staff, err := e.directory.ActiveStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	todays, err := e.sessions.SessionsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", date, err)
	}

	clockedIn := make(map[int64]bool, len(todays))
	for _, s := range todays {
		clockedIn[s.EmployeeID] = true
	}

	var pending []model.Employee
	for _, emp := range staff {
		if !emp.CanBeNotified() {
			continue
		}
		if clockedIn[emp.PublicID] {
			continue
		}
		pending = append(pending, emp)
	}

	summary := &RunSummary{Kind: kind, Date: date, Candidates: len(pending)}
	var sent, failed int64

	e.forEach(len(pending), func(i int) {
		emp := pending[i]

		msg := push.Message{
			Token: *emp.FCMToken,
			Data:  map[string]string{"type": string(kind), "date": date},
		}
		switch kind {
		case model.TriggerLateArrival:
			msg.Title = "Late Arrival Alert"
			msg.Body = fmt.Sprintf("%s, you have not clocked in yet. Please clock in as soon as possible.", utils.FirstName(emp.Name))
		default:
			msg.Title = "Time to Clock In"
			msg.Body = fmt.Sprintf("Good morning %s, remember to clock in for today.", utils.FirstName(emp.Name))
		}

		if err := e.send(ctx, msg); err != nil {
			atomic.AddInt64(&failed, 1)
			logger.Logger.Warn("Reminder dispatch failed",
				zap.String("kind", string(kind)),
				zap.Int64("employee_id", emp.PublicID),
				zap.Error(err),
			)
			return
		}
		atomic.AddInt64(&sent, 1)
	})

	summary.Sent = int(sent)
	summary.Errors = int(failed)

	if kind == model.TriggerLateArrival {
		summary.Late = make([]LateEmployee, 0, len(pending))
		for _, emp := range pending {
			summary.Late = append(summary.Late, LateEmployee{
				Name:       emp.Name,
				PFNumber:   emp.PFNumber,
				Department: emp.Department,
			})
		}
	}

	if err := e.appendRunSummary(ctx, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// RunClockOutReminder notifies everyone still clocked in for the date, with
// the elapsed duration since their clock-in in the message body.
func (e *ReminderEngine) RunClockOutReminder(ctx context.Context, date string) (*RunSummary, error) {
	open, err := e.sessions.OpenSessions(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list open sessions for %s: %w", date, err)
	}

	summary := &RunSummary{Kind: model.TriggerClockOutRemind, Date: date, Candidates: len(open)}
	reference := e.now().Format(utils.TimeOfDayLayout)
	var sent, failed int64

	e.forEach(len(open), func(i int) {
		session := open[i]

		emp, err := e.directory.EmployeeByPublicID(ctx, session.EmployeeID)
		if err != nil || emp == nil || !emp.CanBeNotified() {
			atomic.AddInt64(&failed, 1)
			logger.Logger.Warn("Clock-out reminder skipped",
				zap.Int64("employee_id", session.EmployeeID),
				zap.Error(err),
			)
			return
		}

		elapsed := utils.FormatElapsed(session.ClockInTime, reference)
		msg := push.Message{
			Token: *emp.FCMToken,
			Title: "Time to Clock Out",
			Body:  fmt.Sprintf("%s, you have been clocked in for %s. Remember to clock out.", utils.FirstName(emp.Name), elapsed),
			Data:  map[string]string{"type": string(model.TriggerClockOutRemind), "date": date},
		}
		if err := e.send(ctx, msg); err != nil {
			atomic.AddInt64(&failed, 1)
			logger.Logger.Warn("Reminder dispatch failed",
				zap.String("kind", string(model.TriggerClockOutRemind)),
				zap.Int64("employee_id", emp.PublicID),
				zap.Error(err),
			)
			return
		}
		atomic.AddInt64(&sent, 1)
	})

	summary.Sent = int(sent)
	summary.Errors = int(failed)

	if err := e.appendRunSummary(ctx, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (e *ReminderEngine) send(ctx context.Context, msg push.Message) error {
	res, err := e.dispatcher.SendSingle(ctx, msg)
	if err != nil {
		return err
	}
	if res != nil && !res.Delivered {
		if res.Err != nil {
			return res.Err
		}
		return fmt.Errorf("message not delivered")
	}
	return nil
}

// forEach runs n units over a worker pool of e.workers goroutines and blocks
// until every unit has settled. No short-circuit on failure.
func (e *ReminderEngine) forEach(n int, unit func(i int)) {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			unit(i)
		}(i)
	}
	wg.Wait()
}

func (e *ReminderEngine) appendRunSummary(ctx context.Context, summary *RunSummary) error {
	id, err := snowflake.NextID()
	if err != nil {
		return fmt.Errorf("mint run summary id: %w", err)
	}

	payload := model.JSONB{
		"date":       summary.Date,
		"candidates": summary.Candidates,
		"sent":       summary.Sent,
		"errors":     summary.Errors,
	}
	if summary.Kind == model.TriggerLateArrival {
		payload["late_employees"] = summary.Late
	}

	record := &model.AlertRecord{
		PublicID: id,
		Type:     model.AlertType(summary.Kind),
		Severity: model.SeverityInfo,
		Payload:  payload,
		Outcome:  "completed",
	}
	if err := e.alerts.Append(ctx, record); err != nil {
		return fmt.Errorf("append run summary: %w", err)
	}

	logger.Logger.Info("Reminder run completed",
		zap.String("kind", string(summary.Kind)),
		zap.String("date", summary.Date),
		zap.Int("candidates", summary.Candidates),
		zap.Int("sent", summary.Sent),
		zap.Int("errors", summary.Errors),
	)
	return nil
}
