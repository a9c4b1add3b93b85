// Package fixtures holds the demo data served by the mock backend and seeded
// into a fresh Postgres backend.
package fixtures

import (
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/models"
)

// Account is a fixed demo login. These credentials are documented, not secret.
type Account struct {
	ID       string
	Email    string
	Password string
}

// Set is one consistent copy of the demo data.
type Set struct {
	Accounts []Account
	Profiles []models.UserProfile
	News     []models.NewsItem
	Metrics  []models.TrustMetric
	Rumors   []models.Rumor
}

// DemoEmail and DemoPassword are the primary demo login.
const (
	DemoEmail    = "demo@newsinsight.com"
	DemoPassword = "demo123"
)

// Load returns a fresh Set whose timestamps are all now.
func Load(now time.Time) *Set {
	return &Set{
		Accounts: []Account{
			{ID: "1", Email: DemoEmail, Password: DemoPassword},
			{ID: "2", Email: "alice@example.com", Password: "password123"},
			{ID: "3", Email: "bob@example.com", Password: "password123"},
		},
		Profiles: []models.UserProfile{
			{ID: "1", Email: DemoEmail, Username: "Demo User", TrustPoints: 2500, VerificationsCount: 45, CreatedAt: now},
			{ID: "2", Email: "alice@example.com", Username: "Alice Johnson", TrustPoints: 1890, VerificationsCount: 32, CreatedAt: now},
			{ID: "3", Email: "bob@example.com", Username: "Bob Smith", TrustPoints: 1650, VerificationsCount: 28, CreatedAt: now},
		},
		News: []models.NewsItem{
			{
				ID:         "1",
				Title:      "Breaking: New Climate Research Shows Promising Results",
				Content:    "Scientists at leading universities have published groundbreaking research...",
				Source:     "Nature Climate Journal",
				Verified:   true,
				TrustScore: 94.5,
				Category:   "Science",
				CreatedAt:  now,
				UpdatedAt:  now,
			},
			{
				ID:         "2",
				Title:      "Tech Giants Announce Joint AI Safety Initiative",
				Content:    "Major technology companies have formed an alliance...",
				Source:     "Tech News Daily",
				Verified:   true,
				TrustScore: 89.2,
				Category:   "Technology",
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		},
		Metrics: []models.TrustMetric{
			{ID: "1", MetricName: "Source Reliability", Score: 96.0, Timestamp: now},
			{ID: "2", MetricName: "Fact Verification", Score: 92.0, Timestamp: now},
			{ID: "3", MetricName: "Content Accuracy", Score: 95.0, Timestamp: now},
			{ID: "4", MetricName: "Detection Rate", Score: 94.0, Timestamp: now},
		},
		Rumors: []models.Rumor{
			{
				ID:         "1",
				Content:    "Major tech company planning massive layoffs next quarter",
				Source:     "Anonymous insider",
				Status:     models.RumorPending,
				TrustScore: 45.2,
				VotesCount: 156,
				CreatedAt:  now,
			},
			{
				ID:         "2",
				Content:    "New vaccine side effects discovered in recent study",
				Source:     "Unverified medical source",
				Status:     models.RumorDebunked,
				TrustScore: 15.8,
				VotesCount: 89,
				CreatedAt:  now,
			},
		},
	}
}

// FindAccount returns the account matching both email and password.
func (s *Set) FindAccount(email, password string) (Account, bool) {
	for _, a := range s.Accounts {
		if a.Email == email && a.Password == password {
			return a, true
		}
	}
	return Account{}, false
}
