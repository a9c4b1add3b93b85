package models

import "time"

type NewsItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Verified   bool      `json:"verified"`
	TrustScore float64   `json:"trust_score"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TrustMetric struct {
	ID         string    `json:"id"`
	MetricName string    `json:"metric_name"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// Verification is a user's verdict on a news item.
type Verification struct {
	NewsItemID string    `json:"news_item_id"`
	UserID     string    `json:"user_id"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
