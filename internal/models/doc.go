// Package models defines the records exchanged with every backend strategy.
// JSON tags match the column names of the hosted schema.
package models

// Table names.
const (
	TableUserProfiles  = "user_profiles"
	TableNewsItems     = "news_items"
	TableTrustMetrics  = "trust_metrics"
	TableRumors        = "rumors"
	TableVerifications = "verifications"
)
