package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/push"
	"OnDuty/pkg/snowflake"
)

// ManualDispatch is an administrator-initiated one-off notification.
type ManualDispatch struct {
	Type       string
	EmployeeID int64
	Title      string
	Body       string
}

// NotificationService backs the admin notification endpoints: manual sends
// plus time-bounded reads over the alert log.
type NotificationService struct {
	directory  repository.DirectoryStore
	alerts     repository.AlertLog
	dispatcher push.Client
	now        func() time.Time
}

func NewNotificationService(directory repository.DirectoryStore, alerts repository.AlertLog, dispatcher push.Client) *NotificationService {
	return &NotificationService{
		directory:  directory,
		alerts:     alerts,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// SendManual dispatches a push to one employee and logs the outcome. The
// outcome record is written for failures too, so administrators can audit
// undelivered sends.
func (s *NotificationService) SendManual(ctx context.Context, in ManualDispatch) error {
	emp, err := s.directory.EmployeeByPublicID(ctx, in.EmployeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return errors.EmployeeNotFound
	}
	if !emp.CanBeNotified() {
		return errors.PushAddressMissing
	}

	msg := push.Message{
		Token: *emp.FCMToken,
		Title: in.Title,
		Body:  in.Body,
		Data:  map[string]string{"type": in.Type},
	}
	res, sendErr := s.dispatcher.SendSingle(ctx, msg)

	outcome := "sent"
	if sendErr != nil || (res != nil && !res.Delivered) {
		outcome = "failed"
	}
	s.logManual(ctx, in, emp.PublicID, outcome, sendErr)

	if outcome == "failed" {
		return errors.DispatchFailed
	}
	return nil
}

func (s *NotificationService) logManual(ctx context.Context, in ManualDispatch, employeeID int64, outcome string, sendErr error) {
	id, err := snowflake.NextID()
	if err != nil {
		logger.Logger.Error("Failed to mint manual notification id", zap.Error(err))
		return
	}

	payload := model.JSONB{
		"type":  in.Type,
		"title": in.Title,
		"body":  in.Body,
	}
	if sendErr != nil {
		payload["error"] = sendErr.Error()
	}

	record := &model.AlertRecord{
		PublicID:   id,
		Type:       model.AlertTypeManual,
		Severity:   model.SeverityInfo,
		EmployeeID: &employeeID,
		Payload:    payload,
		Outcome:    outcome,
	}
	if err := s.alerts.Append(ctx, record); err != nil {
		logger.Logger.Error("Failed to log manual notification", zap.Error(err))
	}
}

const (
	defaultLogDays  = 7
	maxLogDays      = 90
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// RecentLogs returns alert log entries from the last N days, newest first.
// Out-of-range parameters are clamped rather than rejected.
func (s *NotificationService) RecentLogs(ctx context.Context, days, limit int) ([]model.AlertRecord, error) {
	if days <= 0 {
		days = defaultLogDays
	}
	if days > maxLogDays {
		days = maxLogDays
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	since := s.now().AddDate(0, 0, -days)
	return s.alerts.Recent(ctx, since, limit)
}
