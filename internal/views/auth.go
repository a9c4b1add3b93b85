package views

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/session"
)

// AuthState is a point-in-time copy of an AuthView.
type AuthState struct {
	User    *models.User
	Profile *models.UserProfile
	Loading bool
}

// Outcome reports a login or logout. Error is empty on success.
type Outcome struct {
	Success bool
	Error   string
}

// AuthView tracks the signed-in user and their profile.
type AuthView struct {
	client *backend.Client
	logger logging.Logger

	mu      sync.RWMutex
	user    *models.User
	profile *models.UserProfile
	loading bool

	settled sync.Once
	done    chan struct{}
	changed chan struct{}

	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sub     *session.Subscription
}

func NewAuthView(c *backend.Client, logger logging.Logger) *AuthView {
	return &AuthView{
		client:  c,
		logger:  logger.With("module", "views", "view", "auth"),
		loading: true,
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
	}
}

// Start loads the current user and profile in the background and follows
// auth-state changes.
func (v *AuthView) Start(ctx context.Context) {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	v.ctx, v.cancel = context.WithCancel(ctx)
	ctx = v.ctx
	v.sub = v.client.OnAuthStateChange(v.onAuthChange)
	v.mu.Unlock()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer v.settle()

		res, err := v.client.GetUser(ctx)
		if err != nil {
			v.logger.Error(ctx, "get current user failed", "error", err)
			return
		}
		if res.User == nil {
			return
		}
		profile := v.loadProfile(ctx, res.User.ID)

		v.mu.Lock()
		v.user, v.profile = res.User, profile
		v.mu.Unlock()
		v.notify()
	}()
}

func (v *AuthView) onAuthChange(event session.AuthEvent, s *models.Session) {
	v.mu.RLock()
	ctx := v.ctx
	v.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		user    *models.User
		profile *models.UserProfile
	)
	if s != nil {
		u := s.User
		user = &u
		profile = v.loadProfile(ctx, u.ID)
	}

	v.mu.Lock()
	v.user, v.profile = user, profile
	v.loading = false
	v.mu.Unlock()

	v.logger.Debug(ctx, "auth state changed", "event", string(event))
	v.notify()
}

func (v *AuthView) loadProfile(ctx context.Context, userID string) *models.UserProfile {
	p, err := FetchProfile(ctx, v.client, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			v.logger.Warn(ctx, "profile fetch failed", "user_id", userID, "error", err)
		}
		return nil
	}
	return p
}

// Login signs in. Loading is set for the duration of the call.
func (v *AuthView) Login(ctx context.Context, email, password string) Outcome {
	v.setLoading(true)
	defer v.setLoading(false)

	res, err := v.client.SignInWithPassword(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return Outcome{Error: err.Error()}
	}
	if res.Error != nil {
		return Outcome{Error: res.Error.Message}
	}
	return Outcome{Success: true}
}

// Logout signs out. Loading is set for the duration of the call. On
// success the user and profile are cleared before it returns.
func (v *AuthView) Logout(ctx context.Context) Outcome {
	v.setLoading(true)
	defer v.setLoading(false)

	apiErr, err := v.client.SignOut(ctx)
	if err != nil {
		return Outcome{Error: err.Error()}
	}
	if apiErr != nil {
		return Outcome{Error: apiErr.Message}
	}

	v.mu.Lock()
	v.user, v.profile = nil, nil
	v.mu.Unlock()
	return Outcome{Success: true}
}

func (v *AuthView) setLoading(b bool) {
	v.mu.Lock()
	v.loading = b
	v.mu.Unlock()
	v.notify()
}

func (v *AuthView) settle() {
	v.settled.Do(func() {
		v.setLoading(false)
		close(v.done)
	})
}

func (v *AuthView) notify() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}

func (v *AuthView) IsAuthenticated() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.user != nil
}

func (v *AuthView) Snapshot() AuthState {
	v.mu.RLock()
	defer v.mu.RUnlock()

	st := AuthState{Loading: v.loading}
	if v.user != nil {
		u := *v.user
		st.User = &u
	}
	if v.profile != nil {
		p := *v.profile
		st.Profile = &p
	}
	return st
}

// Done is closed once the initial user lookup has settled.
func (v *AuthView) Done() <-chan struct{} {
	return v.done
}

// Changed receives a signal, coalesced, after every state change.
func (v *AuthView) Changed() <-chan struct{} {
	return v.changed
}

// Close stops following auth changes and waits for the initial lookup.
func (v *AuthView) Close() error {
	v.mu.Lock()
	sub, cancel := v.sub, v.cancel
	v.sub = nil
	v.mu.Unlock()

	sub.Unsubscribe()
	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
	return nil
}
