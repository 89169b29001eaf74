// Package status defines the lifecycle states shared by subjects, chapters,
// materials, and users.
package status

const (
	// Active records are visible on the public site.
	Active = "active"

	// Disabled records are hidden from the public site but kept for the
	// admin back office.
	Disabled = "disabled"
)

// IsValid reports whether s is a known status value.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
