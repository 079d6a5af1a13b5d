package model

import "strings"

// Workspace statuses.
const (
	WorkspaceActive   = "Active"
	WorkspaceInactive = "Inactive"
)

// Workspace is the tenant-scoping unit that partitions team members and
// session/call data.
type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Initials    string `json:"initials"`
	Color       string `json:"color"`
	Email       string `json:"email,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	BookingLink string `json:"bookingLink,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	MaxDigits   int    `json:"maxDigits,omitempty"`
}

// Initials derives the workspace initials from a name: the uppercased
// first two characters. It must be recomputed whenever the name changes.
func Initials(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
