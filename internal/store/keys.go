package store

// Persisted-state keys. The names are part of the compatibility surface
// shared with the dashboard's web client and must not change.
const (
	// KeyNotifications holds the JSON array of notification records.
	KeyNotifications = "zervos_notifications_v1"

	// KeyNotificationsSeeded marks that the demo seed has been written
	// once. A cleared feed must stay empty, so the flag outlives the data.
	KeyNotificationsSeeded = "zervos_notifications_seeded_v1"

	// KeyWorkspaces holds the JSON array of workspaces.
	KeyWorkspaces = "workspaces"

	// KeySelectedWorkspace holds the id of the selected workspace, or is
	// absent when nothing is selected.
	KeySelectedWorkspace = "selectedWorkspaceId"

	// KeyCompany holds the onboarding-derived company profile.
	KeyCompany = "zervos_company"

	// KeyOrganization holds the onboarding organization profile.
	KeyOrganization = "zervos_organization"

	// KeyTeamMembers holds the global team member list. Workspace-scoped
	// lists live under ScopedKey(KeyTeamMembers, wsID).
	KeyTeamMembers = "zervos_team_members"

	// KeyInvoices holds the JSON array of invoices.
	KeyInvoices = "zervos_invoices"

	// KeySalesCalls is the base key for workspace-scoped session/call
	// records.
	KeySalesCalls = "zervos_sales_calls"

	// KeyTimeSlots is the base key for workspace-scoped bookable slots.
	KeyTimeSlots = "zervos_time_slots"
)

// ScopedKey returns the workspace-scoped variant of a base key.
func ScopedKey(base, workspaceID string) string {
	return base + "::" + workspaceID
}
