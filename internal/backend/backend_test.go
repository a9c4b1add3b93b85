package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/backend/mock"
	"github.com/dmitrijs2005/newsinsight/internal/backend/postgres"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/fixtures"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AuthEventDelay = 5 * time.Millisecond
	return cfg
}

func openClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	c, err := Open(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpen_PlaceholdersSelectMock(t *testing.T) {
	c := openClient(t, testConfig())
	assert.Equal(t, mock.Kind, c.Kind())
}

func TestOpen_MissingKeySelectsMock(t *testing.T) {
	cfg := testConfig()
	cfg.BackendURL = "https://abc.example.co"
	cfg.BackendKey = ""
	c := openClient(t, cfg)
	assert.Equal(t, mock.Kind, c.Kind())
}

func TestOpen_RealCredentialsSelectRemote(t *testing.T) {
	cfg := testConfig()
	cfg.BackendURL = "https://abc.example.co"
	cfg.BackendKey = "real-key"
	cfg.DatabaseDSN = "postgres://ignored"
	c := openClient(t, cfg)
	assert.Equal(t, "remote", c.Kind())
}

func TestOpen_DSNSelectsPostgres(t *testing.T) {
	orig := openPostgres
	defer func() { openPostgres = orig }()

	var gotDSN string
	openPostgres = func(ctx context.Context, dsn string, hub realtime.Hub, opts postgres.Options, l logging.Logger) (Backend, error) {
		gotDSN = dsn
		return mock.New(hub, mock.Options{AuthEventDelay: opts.AuthEventDelay}, l), nil
	}

	cfg := testConfig()
	cfg.DatabaseDSN = "postgres://user:pw@localhost/newsinsight"
	openClient(t, cfg)
	assert.Equal(t, cfg.DatabaseDSN, gotDSN)
}

func TestOpen_PostgresError(t *testing.T) {
	orig := openPostgres
	defer func() { openPostgres = orig }()
	openPostgres = func(context.Context, string, realtime.Hub, postgres.Options, logging.Logger) (Backend, error) {
		return nil, errors.New("connection refused")
	}

	cfg := testConfig()
	cfg.DatabaseDSN = "postgres://nowhere"
	_, err := Open(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postgres backend")
}

func TestOpen_NATSError(t *testing.T) {
	orig := connectNATS
	defer func() { connectNATS = orig }()
	connectNATS = func(string, logging.Logger) (realtime.Hub, error) {
		return nil, errors.New("no servers available")
	}

	cfg := testConfig()
	cfg.NATSURL = "nats://127.0.0.1:4222"
	_, err := Open(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open realtime hub")
}

func TestClient_SignInGetUserSignOut(t *testing.T) {
	c := openClient(t, testConfig())
	ctx := context.Background()

	res, err := c.SignInWithPassword(ctx, models.Credentials{Email: fixtures.DemoEmail, Password: fixtures.DemoPassword})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Equal(t, "1", res.User.ID)

	cur, err := c.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur.User)
	assert.Equal(t, "1", cur.User.ID)

	_, err = c.SignOut(ctx)
	require.NoError(t, err)
	cur, err = c.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur.User)
}

func TestClient_ProfileLookup(t *testing.T) {
	c := openClient(t, testConfig())
	ctx := context.Background()

	res, err := c.From(models.TableUserProfiles).Select("*").Eq("id", "2").Single().Execute(ctx)
	require.NoError(t, err)
	p, err := query.DecodeOne[models.UserProfile](res)
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", p.Username)

	res, err = c.From(models.TableUserProfiles).Select("*").Eq("id", "999").Single().Execute(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, "Not found", res.Error.Message)
}

type closeRecorder struct {
	closed *[]string
	name   string
	err    error
}

func (c closeRecorder) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func TestClient_CloseOrder(t *testing.T) {
	hub := realtime.NewLocalHub()
	var closed []string
	c := NewClient(
		mock.New(hub, mock.Options{}, logging.Discard()),
		closeRecorder{closed: &closed, name: "hub"},
		closeRecorder{closed: &closed, name: "extra", err: errors.New("boom")},
	)

	err := c.Close()
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"hub", "extra"}, closed)
}
