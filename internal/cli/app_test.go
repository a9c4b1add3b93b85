package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/backend/mock"
	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/fixtures"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/preferences"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// syncBuffer is written by watch while the test reads it.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type testApp struct {
	*App
	out   *syncBuffer
	hub   *realtime.LocalHub
	opens int
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil)

	out := &syncBuffer{}
	cfg := &config.Config{
		PreferencesPath: filepath.Join(t.TempDir(), "prefs", "newsinsight.db"),
		AuthEventDelay:  time.Millisecond,
	}
	ta := &testApp{App: NewApp(cfg, strings.NewReader(input), out, io.Discard), out: out}
	ta.openClient = func(_ context.Context, _ *config.Config, l logging.Logger) (*backend.Client, error) {
		ta.opens++
		ta.hub = realtime.NewLocalHub()
		return backend.NewClient(mock.New(ta.hub, mock.Options{AuthEventDelay: time.Millisecond}, l), ta.hub), nil
	}
	t.Cleanup(func() { _ = ta.Close() })
	return ta
}

func (ta *testApp) run(t *testing.T, args ...string) error {
	t.Helper()
	return ta.Execute(context.Background(), args)
}

func TestNews_Table(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "news"))
	lines := strings.Split(strings.TrimSpace(a.out.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[0], "VERIFIED")
}

func TestNews_JSON(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "news", "--json"))
	var items []models.NewsItem
	require.NoError(t, json.Unmarshal([]byte(a.out.String()), &items))
	assert.Len(t, items, len(fixtures.Load(time.Now()).News))
}

func TestLeaderboard(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "leaderboard"))
	lines := strings.Split(strings.TrimSpace(a.out.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "RANK")
	assert.True(t, strings.HasPrefix(lines[1], "1 "), lines[1])
	assert.Contains(t, lines[1], "Demo User")
}

func TestMetricsAndRumors(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "metrics", "--json"))
	var metrics []models.TrustMetric
	require.NoError(t, json.Unmarshal([]byte(a.out.String()), &metrics))
	assert.NotEmpty(t, metrics)

	require.NoError(t, a.run(t, "rumors"))
	assert.Contains(t, a.out.String(), "STATUS")
	assert.Equal(t, 1, a.opens, "client is reused across commands")
}

func TestProfile(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "profile", "1"))
	assert.Contains(t, a.out.String(), "Demo User")

	err := a.run(t, "profile", "404")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.Error(t, a.run(t, "profile"))
}

func TestLogin_PromptsForCredentials(t *testing.T) {
	a := newTestApp(t, fixtures.DemoEmail+"\n"+fixtures.DemoPassword+"\n")

	require.NoError(t, a.run(t, "login"))
	out := a.out.String()
	assert.Contains(t, out, "-Enter email")
	assert.Contains(t, out, "Enter password: ")
	assert.Contains(t, out, "Signed in as "+fixtures.DemoEmail)
	assert.Equal(t, " ("+fixtures.DemoEmail+")", a.status())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newTestApp(t, "wrong\n")

	err := a.run(t, "login", "--email", fixtures.DemoEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	assert.Equal(t, common.MessageInvalidCredentials, err.Error())
	assert.Empty(t, a.status())
}

func TestRegister_Duplicate(t *testing.T) {
	a := newTestApp(t, "x\n")

	err := a.run(t, "register", "--email", fixtures.DemoEmail)
	assert.ErrorIs(t, err, common.ErrorUserExists)
}

func TestVerify(t *testing.T) {
	a := newTestApp(t, fixtures.DemoPassword+"\n")

	assert.ErrorIs(t, a.run(t, "verify", "1"), ErrNotSignedIn)

	require.NoError(t, a.run(t, "login", "--email", fixtures.DemoEmail))
	require.NoError(t, a.run(t, "verify", "1"))
	assert.Contains(t, a.out.String(), "Marked news 1 as verified")

	require.NoError(t, a.run(t, "verify", "2", "--reject"))
	assert.Contains(t, a.out.String(), "Marked news 2 as disputed")
}

func TestWhoamiAndLogout(t *testing.T) {
	a := newTestApp(t, fixtures.DemoPassword+"\n")

	assert.ErrorIs(t, a.run(t, "whoami"), ErrNotSignedIn)

	require.NoError(t, a.run(t, "login", "--email", fixtures.DemoEmail))
	require.NoError(t, a.run(t, "whoami"))
	assert.Contains(t, a.out.String(), fixtures.DemoEmail+" (1)")
	assert.Contains(t, a.out.String(), "Demo User: 2500 trust points")

	require.NoError(t, a.run(t, "logout"))
	assert.Contains(t, a.out.String(), "Signed out")
	assert.ErrorIs(t, a.run(t, "whoami"), ErrNotSignedIn)
}

func TestTheme(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "theme"))
	require.NoError(t, a.run(t, "theme", "toggle"))
	require.NoError(t, a.run(t, "theme", "get"))
	require.NoError(t, a.run(t, "theme", "set", "dark"))
	assert.Equal(t, "dark\nlight\nlight\ndark\n", a.out.String())

	err := a.run(t, "theme", "set", "blue")
	assert.ErrorIs(t, err, common.ErrorIncorrectTheme)

	// Persisted across opens.
	s, err := preferences.Open(context.Background(), a.config.PreferencesPath, logging.Discard())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, preferences.ThemeDark, got)
}

func TestTheme_JSON(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "theme", "toggle", "--json"))
	assert.JSONEq(t, `{"theme":"light"}`, a.out.String())
}

func TestWatch_PrintsInserts(t *testing.T) {
	a := newTestApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Execute(ctx, []string{"watch", "--json"}) }()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.hub != nil && a.hub.Len() > 0
	}, time.Second, 5*time.Millisecond)

	c, err := a.backendClient(ctx)
	require.NoError(t, err)
	_, err = c.From(models.TableNewsItems).Insert(ctx, models.NewsItem{ID: "n-99", Title: "Breaking"})
	require.NoError(t, err)
	_, err = c.From(models.TableTrustMetrics).Insert(ctx, models.TrustMetric{ID: "m-1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(a.out.String(), `"n-99"`)
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}

	var e realtime.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(a.out.String())), &e))
	assert.Equal(t, realtime.EventInsert, e.EventType)
	assert.Equal(t, models.TableNewsItems, e.Table)
	assert.NotContains(t, a.out.String(), "m-1")
	assert.Equal(t, 0, a.hub.Len())
}

func TestWatch_Duration(t *testing.T) {
	a := newTestApp(t, "")

	start := time.Now()
	require.NoError(t, a.run(t, "watch", "--table", "metrics", "--duration", "20ms"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWatch_UnknownTable(t *testing.T) {
	a := newTestApp(t, "")

	err := a.run(t, "watch", "--table", "rumors")
	assert.ErrorContains(t, err, `unknown table "rumors"`)
}

func TestPrintEvent_Text(t *testing.T) {
	a := newTestApp(t, "")
	e, err := realtime.NewEvent(realtime.EventDelete, models.TableNewsItems, nil, map[string]string{"id": "7"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, a.printEvent(&out, e))
	assert.Contains(t, out.String(), `DELETE news_items {"id":"7"}`)
}

func TestUpload_NeedsRemoteBackend(t *testing.T) {
	a := newTestApp(t, "")

	err := a.run(t, "upload", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrUploadsUnsupported)
}

func TestUnknownCommand(t *testing.T) {
	a := newTestApp(t, "")

	err := a.run(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestVersion(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run(t, "version"))
	assert.Contains(t, a.out.String(), "Build version: N/A")
	assert.Equal(t, 0, a.opens)
}

func TestClose_Idempotent(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.Close())
	require.NoError(t, a.run(t, "rumors"))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, a.opens)
}
