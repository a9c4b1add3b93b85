package preferences

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTheme_DefaultsToDark(t *testing.T) {
	s := openStore(t, ":memory:")
	th, err := s.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th)
}

func TestSetTheme_Persists(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:")

	require.NoError(t, s.SetTheme(ctx, ThemeLight))
	th, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, th)
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	s := openStore(t, ":memory:")
	err := s.SetTheme(context.Background(), Theme("sepia"))
	assert.ErrorIs(t, err, common.ErrorIncorrectTheme)
}

func TestToggle_FlipsAndPersists(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:")

	th, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, th)

	th, err = s.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th)

	stored, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, stored)
}

func TestToggle_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Toggle(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	th, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th, "an even number of toggles returns to the start")
}

func TestOpen_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")

	s, err := Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(ctx, ThemeLight))
	require.NoError(t, s.Close())

	s2 := openStore(t, path)
	th, err := s2.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, th)
}

func TestTheme_ForeignValueReadsAsLight(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:")
	require.NoError(t, s.repo.Set(ctx, keyTheme, "solarized"))

	th, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, th)
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"dark", ThemeDark, false},
		{"light", ThemeLight, false},
		{"Dark", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorIncorrectTheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type brokenRepo struct{}

func (brokenRepo) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk I/O error")
}
func (brokenRepo) Set(context.Context, string, string) error { return errors.New("disk I/O error") }
func (brokenRepo) Delete(context.Context, string) error      { return nil }

func TestStore_PropagatesRepositoryErrors(t *testing.T) {
	s := New(brokenRepo{}, logging.Discard())
	_, err := s.Theme(context.Background())
	assert.Error(t, err)
	_, err = s.Toggle(context.Background())
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}
