// Package postgres is the self-hosted backend strategy: accounts, profiles
// and content live in PostgreSQL, reads honour filters, ordering and
// limits, and inserts are published to the realtime hub.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/auth"
	"github.com/dmitrijs2005/newsinsight/internal/backend/postgres/migrations"
	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/dbx"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/dmitrijs2005/newsinsight/internal/session"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const Kind = "postgres"

// MessageUserExists is returned by SignUp for a taken email.
const MessageUserExists = common.MessageUserExists

type Options struct {
	AuthEventDelay time.Duration
	// TokenFunc mints the access token placed in new sessions. Defaults to
	// a random opaque value.
	TokenFunc func(user models.User) (string, error)
	// NewID names new accounts. Defaults to a random UUID.
	NewID func() string
}

type Backend struct {
	db        *sql.DB
	tracker   *session.Tracker
	hub       realtime.Hub
	tokenFunc func(models.User) (string, error)
	newID     func() string
	logger    logging.Logger
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// hashPassword is a seam so tests can seed without bcrypt's cost.
var hashPassword = auth.HashPassword

// Open connects to dsn, migrates the schema and seeds the demo data when the
// database is empty.
func Open(ctx context.Context, dsn string, hub realtime.Hub, opts Options, logger logging.Logger) (*Backend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	b := New(db, hub, opts, logger)
	if err := b.RunMigrations(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := b.Seed(ctx, time.Now().UTC()); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	return b, nil
}

// New wraps an open database. The backend owns db from here on.
func New(db *sql.DB, hub realtime.Hub, opts Options, logger logging.Logger) *Backend {
	if opts.AuthEventDelay == 0 {
		opts.AuthEventDelay = session.DefaultDelay
	}
	if opts.TokenFunc == nil {
		opts.TokenFunc = opaqueToken
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger = logger.With("module", "postgres_backend")
	return &Backend{
		db:        db,
		tracker:   session.NewTracker(opts.AuthEventDelay, logger),
		hub:       hub,
		tokenFunc: opts.TokenFunc,
		newID:     opts.NewID,
		logger:    logger,
	}
}

func (b *Backend) Kind() string { return Kind }

// RunMigrations applies the embedded goose migrations.
func (b *Backend) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, b.db, ".")
}

func (b *Backend) GetUser(ctx context.Context) (session.UserResponse, error) {
	return session.UserResponse{User: b.tracker.User()}, nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	user, apiErr, err := b.Authenticate(ctx, creds)
	if err != nil || apiErr != nil {
		return session.Failed(apiErr), err
	}
	return b.start(ctx, *user)
}

// Authenticate checks creds without touching the session slot.
func (b *Backend) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error) {
	q := `SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`

	var (
		user models.User
		hash string
	)
	err := b.db.QueryRowContext(ctx, q, creds.Email).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		b.logger.Info(ctx, "sign-in rejected", "email", creds.Email)
		return nil, common.InvalidCredentials(), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}

	if err := auth.CheckPassword(hash, creds.Password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			b.logger.Info(ctx, "sign-in rejected", "email", creds.Email)
			return nil, common.InvalidCredentials(), nil
		}
		return nil, nil, fmt.Errorf("check password: %w", err)
	}
	return &user, nil, nil
}

// SignUp registers creds and signs the new user in.
func (b *Backend) SignUp(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	user, apiErr, err := b.Register(ctx, creds)
	if err != nil || apiErr != nil {
		return session.Failed(apiErr), err
	}
	return b.start(ctx, *user)
}

// Register creates an account and its profile in one transaction. Ids come
// from Options.NewID, so concurrent sign-ups cannot collide.
func (b *Backend) Register(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error) {
	hash, err := hashPassword(creds.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user   models.User
		exists bool
	)
	err = dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		q := `INSERT INTO accounts (id, email, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, email, created_at`

		err := tx.QueryRowContext(ctx, q, b.newID(), creds.Email, hash).Scan(&user.ID, &user.Email, &user.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			exists = true
			return nil
		}
		if err != nil {
			return err
		}

		q = `INSERT INTO user_profiles (id, email, username, created_at) VALUES ($1, $2, $3, $4)`
		_, err = tx.ExecContext(ctx, q, user.ID, user.Email, usernameFromEmail(user.Email), user.CreatedAt)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	if exists {
		return nil, common.NewAPIError(MessageUserExists, common.ErrorUserExists), nil
	}
	return &user, nil, nil
}

func (b *Backend) start(ctx context.Context, user models.User) (session.AuthResponse, error) {
	token, err := b.tokenFunc(user)
	if err != nil {
		return session.AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}
	sess := models.Session{User: user, AccessToken: token}
	b.tracker.SignedIn(sess)
	b.logger.Info(ctx, "signed in", "user_id", user.ID)

	u := user
	return session.AuthResponse{User: &u, Session: &sess}, nil
}

func (b *Backend) SignOut(ctx context.Context) (*common.APIError, error) {
	b.tracker.SignedOut()
	b.logger.Info(ctx, "signed out")
	return nil, nil
}

func (b *Backend) OnAuthStateChange(l session.Listener) *session.Subscription {
	return b.tracker.OnAuthStateChange(l)
}

func (b *Backend) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	q, args, apiErr := buildSelect(req)
	if apiErr != nil {
		return query.Failed(apiErr), nil
	}

	doc, err := dbx.QueryJSON(ctx, b.db, q, args...)
	if errors.Is(err, common.ErrorNotFound) {
		if req.Single {
			return query.Failed(common.NotFound()), nil
		}
		return query.Result{Data: json.RawMessage("[]")}, nil
	}
	if err != nil {
		return query.Result{}, fmt.Errorf("db error: %w", err)
	}
	return query.Result{Data: doc}, nil
}

// Insert stores values and publishes one INSERT event per stored row. The
// result holds the rows as stored, defaults included.
func (b *Backend) Insert(ctx context.Context, table string, values any) (query.Result, error) {
	rows, err := query.NormalizeRows(values)
	if err != nil {
		return query.Result{}, err
	}
	if len(rows) == 0 {
		return query.Result{Data: rows.JSON()}, nil
	}

	cols, err := rows.Columns()
	if err != nil {
		return query.Result{}, err
	}
	q, apiErr := buildInsert(table, cols)
	if apiErr != nil {
		return query.Failed(apiErr), nil
	}

	doc, err := dbx.QueryJSON(ctx, b.db, q, string(rows.JSON()))
	if err != nil {
		return query.Result{}, fmt.Errorf("db error: %w", err)
	}

	var stored []json.RawMessage
	if err := json.Unmarshal(doc, &stored); err != nil {
		return query.Result{}, fmt.Errorf("decode inserted rows: %w", err)
	}
	for _, row := range stored {
		e, err := realtime.NewEvent(realtime.EventInsert, table, row, nil)
		if err != nil {
			return query.Result{}, err
		}
		if err := b.hub.Publish(ctx, e); err != nil {
			b.logger.Warn(ctx, "publish insert event failed", "table", table, "error", err)
		}
	}

	return query.Result{Data: doc}, nil
}

func (b *Backend) Channel(name string) *realtime.Channel {
	return realtime.NewChannel(name, b.hub)
}

// Close stops auth notifications and closes the database.
func (b *Backend) Close() error {
	b.tracker.Close()
	return b.db.Close()
}

func usernameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
