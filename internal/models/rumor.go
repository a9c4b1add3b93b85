package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/common"
)

type RumorStatus string

const (
	RumorPending  RumorStatus = "pending"
	RumorVerified RumorStatus = "verified"
	RumorDebunked RumorStatus = "debunked"
)

// Valid reports whether s is one of the three known statuses.
func (s RumorStatus) Valid() bool {
	switch s {
	case RumorPending, RumorVerified, RumorDebunked:
		return true
	}
	return false
}

func (s *RumorStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	status := RumorStatus(v)
	if !status.Valid() {
		return fmt.Errorf("%w: %q", common.ErrorIncorrectStatus, v)
	}
	*s = status
	return nil
}

type Rumor struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Source     string      `json:"source"`
	Status     RumorStatus `json:"status"`
	TrustScore float64     `json:"trust_score"`
	VotesCount int         `json:"votes_count"`
	CreatedAt  time.Time   `json:"created_at"`
}
