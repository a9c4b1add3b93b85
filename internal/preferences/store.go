package preferences

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/filex"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/preferences/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark

	keyTheme = "theme"
)

// ParseTheme accepts exactly "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeDark, ThemeLight:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrorIncorrectTheme, s)
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Store reads and writes preferences. Toggle is serialized so concurrent
// toggles never lose an update.
type Store struct {
	repo   Repository
	db     *sql.DB
	logger logging.Logger
	mu     sync.Mutex
}

var newProvider = func(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
}

// Open opens (creating when needed) the SQLite file at path and migrates it.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := New(NewSQLiteRepository(db), logger)
	s.db = db
	return s, nil
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("preferences migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("preferences migrations: %w", err)
	}
	return nil
}

// New wraps an existing repository.
func New(repo Repository, logger logging.Logger) *Store {
	return &Store{repo: repo, logger: logger.With("module", "preferences")}
}

// Theme returns the stored theme, or DefaultTheme when none is stored.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := s.repo.Get(ctx, keyTheme)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return DefaultTheme, nil
	}
	if Theme(v) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

// SetTheme persists t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, keyTheme, string(t)); err != nil {
		return err
	}
	s.logger.Debug(ctx, "theme saved", "theme", string(t))
	return nil
}

// Toggle flips the theme, persists it and returns the new value.
func (s *Store) Toggle(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := cur.Toggled()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Close releases the database opened by Open.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
