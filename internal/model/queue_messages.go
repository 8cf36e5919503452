package model

// TriggerKind names the scheduled trigger a message carries.
type TriggerKind string

const (
	TriggerClockInReminder TriggerKind = "clock_in_reminder"
	TriggerLateArrival     TriggerKind = "late_arrival_alert"
	TriggerClockOutRemind  TriggerKind = "clock_out_reminder"
	TriggerDailySummary    TriggerKind = "daily_summary"
)

// ScheduleTriggerMessage is published by the scheduler binary as a delayed
// message; the worker runs the matching engine when it is delivered.
type ScheduleTriggerMessage struct {
	MessageID    string      `json:"message_id"`
	RunID        string      `json:"run_id"`
	Kind         TriggerKind `json:"kind"`
	Date         string      `json:"date"` // YYYY-MM-DD in the workday timezone
	ScheduledAt  string      `json:"scheduled_at"`
	DelaySeconds int         `json:"delay_seconds"`
}

// SessionCreatedMessage is published by the server on every clock-in; the
// worker feeds it to the conflict reconciler.
type SessionCreatedMessage struct {
	MessageID   string `json:"message_id"`
	SessionID   int64  `json:"session_id"`
	EmployeeID  int64  `json:"employee_id"`
	Date        string `json:"date"`
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name"`
	ClockInTime string `json:"clock_in_time"`
	ScheduledAt string `json:"scheduled_at"`
}
