package dto

type DashboardResponse struct {
	TotalStudents    int64 `json:"total_students"`
	TotalOwners      int64 `json:"total_owners"`
	TotalHousing     int64 `json:"total_housing"`
	AvailableHousing int64 `json:"available_housing"`
	TotalItems       int64 `json:"total_items"`
	UnsoldItems      int64 `json:"unsold_items"`
	RoommateProfiles int64 `json:"roommate_profiles"`
	ActiveRoommates  int64 `json:"active_roommates"`
	PendingReports   int64 `json:"pending_reports"`
}
