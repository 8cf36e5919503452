package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// AlertType enumerates the kinds of entries in the append-only alert log.
type AlertType string

const (
	AlertTypeDeviceConflict AlertType = "device_conflict"
	AlertTypeFunctionError  AlertType = "function_error"
	AlertTypeClockInRun     AlertType = "clock_in_reminder"
	AlertTypeLateArrivalRun AlertType = "late_arrival_alert"
	AlertTypeClockOutRun    AlertType = "clock_out_reminder"
	AlertTypeDailySummary   AlertType = "daily_summary"
	AlertTypeManual         AlertType = "manual"
)

// AlertSeverity enumerates alert severities.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// AlertRecord is a write-once log entry. Run summaries, conflict alerts, and
// swallowed function errors all land here; it is the only place administrators
// observe background activity.
type AlertRecord struct {
	BaseModel
	PublicID       int64         `gorm:"uniqueIndex;not null" json:"public_id"`
	Type           AlertType     `gorm:"type:varchar(32);not null;index:idx_alerts_type_created" json:"type"`
	Severity       AlertSeverity `gorm:"type:varchar(16);not null;default:'info'" json:"severity"`
	EmployeeID     *int64        `gorm:"index" json:"employee_id,omitempty"`
	Payload        JSONB         `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	RequiresAction bool          `gorm:"not null;default:false" json:"requires_action"`
	Outcome        string        `gorm:"type:varchar(32);not null;default:''" json:"outcome"`

	// Populated for function_error records.
	Function string `gorm:"type:varchar(64);not null;default:''" json:"function,omitempty"`
}

func (AlertRecord) TableName() string {
	return "alert_records"
}

// JSONB stores arbitrary structured payloads in a jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}
