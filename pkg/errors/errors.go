package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition carries a stable business error code with a default message.
type Definition struct {
	Code    string
	Message string
}

// Auth errors.
var (
	Unauthorized      = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	LoginInvalid      = Definition{Code: "LOGIN_INVALID", Message: "PF number or password invalid"}
	AdminRoleRequired = Definition{Code: "ADMIN_ROLE_REQUIRED", Message: "Admin role required"}
	InvalidEmployeeID = Definition{Code: "INVALID_EMPLOYEE_ID", Message: "Invalid employee ID format"}
	AuthRateLimited   = Definition{Code: "AUTH_RATE_LIMITED", Message: "Too many authentication attempts"}
	TooManyRequests   = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, try again later"}
)

// Attendance errors.
var (
	EmployeeNotFound = Definition{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}
	EmployeeInactive = Definition{Code: "EMPLOYEE_INACTIVE", Message: "Employee is not active"}
	SessionNotFound  = Definition{Code: "SESSION_NOT_FOUND", Message: "Attendance session not found"}
	AlreadyClockedIn = Definition{Code: "ALREADY_CLOCKED_IN", Message: "Already clocked in on this device today"}
	NotClockedIn     = Definition{Code: "NOT_CLOCKED_IN", Message: "No active session to clock out"}
)

// Notification errors.
var (
	PushAddressMissing = Definition{Code: "PUSH_ADDRESS_MISSING", Message: "Employee has no push delivery address"}
	DispatchFailed     = Definition{Code: "DISPATCH_FAILED", Message: "Push dispatch failed"}
)

// Lookup maps error codes back to their definitions.
var Lookup = map[string]Definition{
	Unauthorized.Code:       Unauthorized,
	LoginInvalid.Code:       LoginInvalid,
	AdminRoleRequired.Code:  AdminRoleRequired,
	InvalidEmployeeID.Code:  InvalidEmployeeID,
	AuthRateLimited.Code:    AuthRateLimited,
	TooManyRequests.Code:    TooManyRequests,
	EmployeeNotFound.Code:   EmployeeNotFound,
	EmployeeInactive.Code:   EmployeeInactive,
	SessionNotFound.Code:    SessionNotFound,
	AlreadyClockedIn.Code:   AlreadyClockedIn,
	NotClockedIn.Code:       NotClockedIn,
	PushAddressMissing.Code: PushAddressMissing,
	DispatchFailed.Code:     DispatchFailed,
}

// Get returns the Definition for a code, or a generic one if unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError tells a queue consumer to ack and drop a message instead of
// requeueing it (duplicate deliveries, stale runs).
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "message skipped: " + e.Reason
}

func IsSkipMessageError(err error) bool {
	_, ok := err.(*SkipMessageError)
	return ok
}
