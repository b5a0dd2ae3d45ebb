package domain

// MaintenanceSettings holds platform-level maintenance state (from the
// platform_settings table or defaults).
type MaintenanceSettings struct {
	// MaintenanceMode locks the platform down to administrators.
	MaintenanceMode bool
	// Notice is an operator-supplied message shown to rejected callers.
	Notice string
}
