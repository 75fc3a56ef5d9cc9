package grader

import "fmt"

// Role names whose query failed.
type Role string

// Query roles.
const (
	RoleStudent Role = "student"
	RoleGrader  Role = "grader"
)

// QueryError is returned when a sanitized query could not be executed.
type QueryError struct {
	Role  Role
	Query string
	Cause error

	// Timeout is set when the query ran past the configured query timeout.
	Timeout bool
}

func (e *QueryError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s query timed out: %v", e.Role, e.Cause)
	}
	return fmt.Sprintf("%s query failed: %v", e.Role, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}
