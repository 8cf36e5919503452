package model

import "time"

// DailySummary is the per-day aggregate emitted by the aggregator. Rows are
// append-only: re-running a day appends a new authoritative record rather than
// merging with earlier ones.
type DailySummary struct {
	BaseModel
	PublicID int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Date     string `gorm:"type:varchar(10);not null;index" json:"date"`

	TotalEmployees      int     `gorm:"not null" json:"total_employees"`
	PresentCount        int     `gorm:"not null" json:"present_count"`
	LateCount           int     `gorm:"not null" json:"late_count"`
	AbsentCount         int     `gorm:"not null" json:"absent_count"`
	StillClockedInCount int     `gorm:"not null" json:"still_clocked_in_count"`
	AttendanceRate      float64 `gorm:"not null" json:"attendance_rate"`
	TotalHoursWorked    float64 `gorm:"not null" json:"total_hours_worked"`
	AvgHoursWorked      float64 `gorm:"not null" json:"avg_hours_worked"`
	DeviceConflictCount int     `gorm:"not null" json:"device_conflict_count"`

	// Flattened per-employee detail rows for the admin dashboard.
	Details     JSONB     `gorm:"type:jsonb;not null;default:'{}'" json:"details"`
	GeneratedAt time.Time `gorm:"type:timestamptz;not null" json:"generated_at"`
}

func (DailySummary) TableName() string {
	return "daily_summaries"
}

// AttendanceDetail is one row of the flattened detail list stored in
// DailySummary.Details.
type AttendanceDetail struct {
	Name         string  `json:"name"`
	PFNumber     string  `json:"pf_number"`
	ClockInTime  string  `json:"clock_in_time"`
	ClockOutTime string  `json:"clock_out_time"`
	TotalHours   float64 `json:"total_hours"`
	IsLate       bool    `json:"is_late"`
	LateMinutes  int     `json:"late_minutes"`
	DeviceName   string  `json:"device_name"`
}
