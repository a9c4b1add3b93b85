package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ProfilesMatchAccounts(t *testing.T) {
	s := Load(time.Now())

	assert.Len(t, s.Accounts, 3)
	assert.Len(t, s.Profiles, 3)
	for i, a := range s.Accounts {
		assert.Equal(t, a.ID, s.Profiles[i].ID)
		assert.Equal(t, a.Email, s.Profiles[i].Email)
	}
	assert.Len(t, s.News, 2)
	assert.Len(t, s.Metrics, 4)
	assert.Len(t, s.Rumors, 2)
	for _, r := range s.Rumors {
		assert.True(t, r.Status.Valid())
	}
}

func TestLoad_TimestampsAreLoadTime(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := Load(now)

	assert.Equal(t, now, s.News[0].CreatedAt)
	assert.Equal(t, now, s.Metrics[3].Timestamp)
	assert.Equal(t, now, s.Profiles[1].CreatedAt)
}

func TestFindAccount(t *testing.T) {
	s := Load(time.Now())

	a, ok := s.FindAccount(DemoEmail, DemoPassword)
	assert.True(t, ok)
	assert.Equal(t, "1", a.ID)

	_, ok = s.FindAccount(DemoEmail, "wrong")
	assert.False(t, ok)

	_, ok = s.FindAccount("ALICE@example.com", "password123")
	assert.False(t, ok, "email match is exact")
}
