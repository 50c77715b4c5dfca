package model

import "time"

// AnalyticsSummary aggregates contact submission counts.
type AnalyticsSummary struct {
	TotalContacts     int64     `json:"total_contacts"`
	RecentContacts30d int64     `json:"recent_contacts_30d"`
	LastUpdated       time.Time `json:"last_updated"`
}
