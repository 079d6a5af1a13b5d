package model

import "time"

// TeamMember is a salesperson or staff member within a workspace.
type TeamMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SalesCall is a scheduled session/call with salespeople assigned to it.
type SalesCall struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	StartsAt             time.Time `json:"startsAt"`
	EndsAt               time.Time `json:"endsAt"`
	AssignedSalespersons []string  `json:"assignedSalespersons"`
}

// TimeSlot is a bookable window published for a workspace.
type TimeSlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}
