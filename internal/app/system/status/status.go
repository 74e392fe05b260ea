// internal/app/system/status/status.go
package status

// Project lifecycle status values.
const (
	Planning  = "planning"
	Active    = "active"
	Completed = "completed"
)

// IsValid reports whether s is a recognized project status.
func IsValid(s string) bool {
	switch s {
	case Planning, Active, Completed:
		return true
	}
	return false
}
