// Package mock is the in-memory backend strategy used when no real backend
// is configured. It serves the demo fixtures, keeps one session slot and
// turns inserts into realtime INSERT events without storing them.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/fixtures"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/dmitrijs2005/newsinsight/internal/session"
)

// Kind is the strategy name reported by Backend.Kind.
const Kind = "mock"

// AccessToken is the token placed in every mock session.
const AccessToken = "mock-token"

// MessageUserExists is returned by SignUp for a taken email.
const MessageUserExists = common.MessageUserExists

// Options tune a Backend. Zero values fall back to defaults.
type Options struct {
	AuthEventDelay time.Duration
	Now            func() time.Time
}

type Backend struct {
	mu      sync.RWMutex
	data    *fixtures.Set
	now     func() time.Time
	tracker *session.Tracker
	hub     realtime.Hub
	logger  logging.Logger
}

// New builds a mock backend publishing change events on hub. The caller
// keeps ownership of hub.
func New(hub realtime.Hub, opts Options, logger logging.Logger) *Backend {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AuthEventDelay == 0 {
		opts.AuthEventDelay = session.DefaultDelay
	}
	logger = logger.With("module", "mock_backend")
	return &Backend{
		data:    fixtures.Load(opts.Now().UTC()),
		now:     opts.Now,
		tracker: session.NewTracker(opts.AuthEventDelay, logger),
		hub:     hub,
		logger:  logger,
	}
}

func (b *Backend) Kind() string { return Kind }

func (b *Backend) GetUser(ctx context.Context) (session.UserResponse, error) {
	return session.UserResponse{User: b.tracker.User()}, nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	user, apiErr, _ := b.Authenticate(ctx, creds)
	if apiErr != nil {
		return session.Failed(apiErr), nil
	}
	return b.start(ctx, *user), nil
}

// Authenticate checks creds against the fixture accounts without touching
// the session slot.
func (b *Backend) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error) {
	b.mu.RLock()
	acc, ok := b.data.FindAccount(creds.Email, creds.Password)
	b.mu.RUnlock()
	if !ok {
		b.logger.Info(ctx, "sign-in rejected", "email", creds.Email)
		return nil, common.InvalidCredentials(), nil
	}
	return &models.User{ID: acc.ID, Email: acc.Email, CreatedAt: b.now().UTC()}, nil, nil
}

// SignUp registers creds and signs the new user in.
func (b *Backend) SignUp(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	user, apiErr, _ := b.Register(ctx, creds)
	if apiErr != nil {
		return session.Failed(apiErr), nil
	}
	return b.start(ctx, *user), nil
}

// Register adds an account whose id is the account count plus one.
func (b *Backend) Register(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, a := range b.data.Accounts {
		if a.Email == creds.Email {
			return nil, common.NewAPIError(MessageUserExists, common.ErrorUserExists), nil
		}
	}
	acc := fixtures.Account{
		ID:       strconv.Itoa(len(b.data.Accounts) + 1),
		Email:    creds.Email,
		Password: creds.Password,
	}
	b.data.Accounts = append(b.data.Accounts, acc)
	return &models.User{ID: acc.ID, Email: acc.Email, CreatedAt: b.now().UTC()}, nil, nil
}

func (b *Backend) start(ctx context.Context, user models.User) session.AuthResponse {
	sess := models.Session{User: user, AccessToken: AccessToken}
	b.tracker.SignedIn(sess)
	b.logger.Info(ctx, "signed in", "user_id", user.ID)

	u := user
	return session.AuthResponse{User: &u, Session: &sess}
}

func (b *Backend) SignOut(ctx context.Context) (*common.APIError, error) {
	b.tracker.SignedOut()
	b.logger.Info(ctx, "signed out")
	return nil, nil
}

func (b *Backend) OnAuthStateChange(l session.Listener) *session.Subscription {
	return b.tracker.OnAuthStateChange(l)
}

// Execute serves fixture reads. Eq filters are applied; Order and Limit are
// accepted but not applied, so fixture order is preserved. Single lookups
// exist for user_profiles only; anything else reports Not found.
func (b *Backend) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	if err := ctx.Err(); err != nil {
		return query.Result{}, err
	}

	rows, known, err := b.rows(req.Table)
	if err != nil {
		return query.Result{}, err
	}

	if req.Single {
		if req.Table != models.TableUserProfiles {
			return query.Failed(common.NotFound()), nil
		}
		for _, row := range rows {
			if matchesAll(row, req.Filters) {
				return query.OK(row)
			}
		}
		return query.Failed(common.NotFound()), nil
	}

	if !known {
		b.logger.Debug(ctx, "read of unknown table", "table", req.Table)
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, req.Filters) {
			out = append(out, row)
		}
	}
	return query.OK(out)
}

// Insert echoes values back and publishes one INSERT event per row. Reads
// are not affected.
func (b *Backend) Insert(ctx context.Context, table string, values any) (query.Result, error) {
	rows, err := query.NormalizeRows(values)
	if err != nil {
		return query.Result{}, err
	}

	for _, row := range rows {
		e, err := realtime.NewEvent(realtime.EventInsert, table, row, nil)
		if err != nil {
			return query.Result{}, err
		}
		if err := b.hub.Publish(ctx, e); err != nil {
			return query.Result{}, fmt.Errorf("publish insert event: %w", err)
		}
	}

	return query.Result{Data: rows.JSON()}, nil
}

func (b *Backend) Channel(name string) *realtime.Channel {
	return realtime.NewChannel(name, b.hub)
}

// Close stops auth notifications. The hub is left to its owner.
func (b *Backend) Close() error {
	b.tracker.Close()
	return nil
}

func (b *Backend) rows(table string) ([]map[string]any, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var src any
	switch table {
	case models.TableNewsItems:
		src = b.data.News
	case models.TableTrustMetrics:
		src = b.data.Metrics
	case models.TableUserProfiles:
		src = b.data.Profiles
	case models.TableRumors:
		src = b.data.Rumors
	default:
		return nil, false, nil
	}

	raw, err := json.Marshal(src)
	if err != nil {
		return nil, true, fmt.Errorf("marshal %s fixtures: %w", table, err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, true, fmt.Errorf("unmarshal %s fixtures: %w", table, err)
	}
	return rows, true, nil
}

func matchesAll(row map[string]any, filters []query.Filter) bool {
	for _, f := range filters {
		if !f.Matches(row) {
			return false
		}
	}
	return true
}
