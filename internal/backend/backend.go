// Package backend is the facade every NewsInsight component talks to. A
// Backend strategy (mock, postgres or remote) is chosen once by Open and
// wrapped in a Client exposing From(table) queries, auth and realtime
// channels.
package backend

import (
	"context"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/dmitrijs2005/newsinsight/internal/session"
)

// Backend is the capability set shared by every strategy.
//
// Expected failures (bad credentials, missing rows) come back inside the
// response value; the error return is reserved for transport and storage
// faults.
type Backend interface {
	query.Executor

	GetUser(ctx context.Context) (session.UserResponse, error)
	SignInWithPassword(ctx context.Context, creds models.Credentials) (session.AuthResponse, error)
	SignUp(ctx context.Context, creds models.Credentials) (session.AuthResponse, error)
	SignOut(ctx context.Context) (*common.APIError, error)
	OnAuthStateChange(l session.Listener) *session.Subscription

	Channel(name string) *realtime.Channel
	Kind() string
	Close() error
}
