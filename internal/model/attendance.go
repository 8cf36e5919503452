package model

import "time"

// AttendanceStatus enumerates session statuses.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusLate    AttendanceStatus = "Late"
	StatusAbsent  AttendanceStatus = "Absent"
)

// Reconciliation actor recorded when the system force-closes a session.
const ReconcileActorSystem = "system"

// AttendanceSession is one clock-in record. At most one active session may
// exist per (employee, date) on a given device; active sessions across
// different devices for the same employee and date are the conflict condition
// the reconciler detects.
type AttendanceSession struct {
	BaseModel
	PublicID   int64 `gorm:"uniqueIndex;not null" json:"public_id"`
	EmployeeID int64 `gorm:"not null;index:idx_attendance_employee_date" json:"employee_id"`

	// Calendar date in the workday timezone, YYYY-MM-DD.
	WorkDate string `gorm:"type:varchar(10);not null;index:idx_attendance_employee_date;index:idx_attendance_date_active" json:"work_date"`

	// Time-of-day strings mirror what devices report; the timestamps order
	// records within a day.
	ClockInTime  string     `gorm:"type:varchar(8);not null" json:"clock_in_time"`
	ClockInAt    time.Time  `gorm:"type:timestamptz;not null" json:"clock_in_at"`
	ClockOutTime *string    `gorm:"type:varchar(8)" json:"clock_out_time,omitempty"`
	ClockOutAt   *time.Time `gorm:"type:timestamptz" json:"clock_out_at,omitempty"`

	SessionActive bool   `gorm:"not null;default:true;index:idx_attendance_date_active" json:"session_active"`
	DeviceID      string `gorm:"type:varchar(128);not null" json:"device_id"`
	DeviceName    string `gorm:"type:varchar(128);not null;default:''" json:"device_name"`

	// Derived on write; trusted as stored by the aggregator.
	TotalHours  float64          `gorm:"not null;default:0" json:"total_hours"`
	IsLate      bool             `gorm:"not null;default:false" json:"is_late"`
	LateMinutes int              `gorm:"not null;default:0" json:"late_minutes"`
	Status      AttendanceStatus `gorm:"type:varchar(16);not null;default:'Present'" json:"status"`

	// Reconciliation stamp, set when the reconciler deactivates this session.
	ReconciledReason *string    `gorm:"type:varchar(255)" json:"reconciled_reason,omitempty"`
	ReconciledBy     *string    `gorm:"type:varchar(32)" json:"reconciled_by,omitempty"`
	ReconciledAt     *time.Time `gorm:"type:timestamptz" json:"reconciled_at,omitempty"`
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

// IsOpen reports whether the session is still awaiting a clock-out.
func (s *AttendanceSession) IsOpen() bool {
	return s.SessionActive && s.ClockInTime != "" && s.ClockOutTime == nil
}
