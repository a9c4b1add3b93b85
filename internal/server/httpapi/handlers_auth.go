package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/newsinsight/internal/auth"
	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

// handleToken implements the password grant.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if gt := r.URL.Query().Get("grant_type"); gt != wire.GrantTypePassword {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Error: "unsupported_grant_type", ErrorDescription: "grant_type must be password"})
		return
	}

	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	user, apiErr, err := s.deps.Accounts.Authenticate(r.Context(), creds)
	s.respondWithToken(w, r, user, apiErr, err)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	user, apiErr, err := s.deps.Accounts.Register(r.Context(), creds)
	s.respondWithToken(w, r, user, apiErr, err)
}

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var creds models.Credentials
	if err := decodeBody(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: "invalid request body"})
		return creds, false
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: "email and password are required"})
		return creds, false
	}
	return creds, true
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User, apiErr *common.APIError, err error) {
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if apiErr != nil {
		status, body := apiErrorStatus(apiErr, false)
		writeError(w, status, body)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.deps.Secret, s.deps.TokenTTL)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "token issued", "user_id", user.ID)
	writeJSON(w, http.StatusOK, wire.TokenResponse{
		AccessToken: token,
		TokenType:   wire.TokenTypeBearer,
		ExpiresIn:   int(s.deps.TokenTTL.Seconds()),
		User:        *user,
	})
}

// handleLogout acknowledges a sign-out. Tokens are stateless and simply
// expire.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c := claimsFrom(r.Context()); c != nil {
		s.logger.Info(r.Context(), "signed out", "user_id", c.Subject)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	u := models.User{ID: c.Subject, Email: c.Email}
	if c.IssuedAt != nil {
		u.CreatedAt = c.IssuedAt.UTC()
	}
	writeJSON(w, http.StatusOK, u)
}
