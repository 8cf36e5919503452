package model

// EmployeeRole enumerates directory roles.
type EmployeeRole string

const (
	RoleEmployee EmployeeRole = "employee"
	RoleAdmin    EmployeeRole = "admin"
)

// Employee is the directory profile. Rows are provisioned by HR tooling and
// are read-only to the reminder/reconciliation/aggregation paths.
type Employee struct {
	BaseModel
	PublicID   int64        `gorm:"uniqueIndex;not null" json:"public_id"`
	PFNumber   string       `gorm:"uniqueIndex;type:varchar(32);not null" json:"pf_number"`
	Name       string       `gorm:"type:varchar(128);not null" json:"name"`
	Role       EmployeeRole `gorm:"type:varchar(16);not null;default:'employee';index:idx_employees_role_active" json:"role"`
	Department string       `gorm:"type:varchar(64);not null;default:''" json:"department"`
	IsActive   bool         `gorm:"not null;default:true;index:idx_employees_role_active" json:"is_active"`

	// FCM device token; nil means the employee cannot be notified.
	FCMToken *string `gorm:"type:varchar(256)" json:"-"`

	// Set for admins only; enables dashboard login. Never serialized.
	PasswordHash string `gorm:"type:varchar(128);not null;default:''" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

// CanBeNotified reports whether a push can be addressed to this employee.
func (e *Employee) CanBeNotified() bool {
	return e.FCMToken != nil && *e.FCMToken != ""
}

// IsStaff reports whether the employee belongs to reminder populations:
// active and not an admin.
func (e *Employee) IsStaff() bool {
	return e.IsActive && e.Role != RoleAdmin
}
