package session

import (
	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
)

type AuthEvent string

const (
	SignedIn  AuthEvent = "SIGNED_IN"
	SignedOut AuthEvent = "SIGNED_OUT"
)

// Listener receives auth-state changes. Session is nil for SignedOut.
type Listener func(event AuthEvent, s *models.Session)

// AuthResponse is the result of a sign-in or sign-up. On failure User and
// Session are nil and Error is set.
type AuthResponse struct {
	User    *models.User     `json:"user"`
	Session *models.Session  `json:"session"`
	Error   *common.APIError `json:"error"`
}

// UserResponse carries the current user, nil when signed out.
type UserResponse struct {
	User *models.User `json:"user"`
}

// Failed builds a failed AuthResponse.
func Failed(err *common.APIError) AuthResponse {
	return AuthResponse{Error: err}
}
