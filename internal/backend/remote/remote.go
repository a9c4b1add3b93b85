// Package remote is the pass-through backend strategy for a hosted backend
// speaking the GoTrue/PostgREST wire (or the self-hosted API in
// internal/server). Auth-state events are raised locally, as a browser
// client would.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/dmitrijs2005/newsinsight/internal/session"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

const Kind = "remote"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

type Options struct {
	URL            string
	Key            string
	HTTPClient     *http.Client
	AuthEventDelay time.Duration
}

type Backend struct {
	base    *url.URL
	key     string
	client  *http.Client
	tracker *session.Tracker
	hub     realtime.Hub
	logger  logging.Logger
}

func New(opts Options, hub realtime.Hub, logger logging.Logger) (*Backend, error) {
	base, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", opts.URL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.AuthEventDelay == 0 {
		opts.AuthEventDelay = session.DefaultDelay
	}
	logger = logger.With("module", "remote_backend")

	return &Backend{
		base:    base,
		key:     opts.Key,
		client:  opts.HTTPClient,
		tracker: session.NewTracker(opts.AuthEventDelay, logger),
		hub:     hub,
		logger:  logger,
	}, nil
}

func (b *Backend) Kind() string { return Kind }

// GetUser asks the server who the current token belongs to. Without a
// session, or when the server rejects the token, the user is nil.
func (b *Backend) GetUser(ctx context.Context) (session.UserResponse, error) {
	if b.tracker.Current() == nil {
		return session.UserResponse{}, nil
	}

	var user models.User
	apiErr, err := b.do(ctx, http.MethodGet, wire.AuthUserPath, nil, nil, nil, &user)
	if err != nil {
		return session.UserResponse{}, err
	}
	if apiErr != nil {
		b.logger.Warn(ctx, "current token rejected", "error", apiErr.Message)
		return session.UserResponse{}, nil
	}
	return session.UserResponse{User: &user}, nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	q := url.Values{"grant_type": {wire.GrantTypePassword}}
	return b.authenticate(ctx, wire.AuthTokenPath, q, creds)
}

// SignUp registers and, when the server returns a token, signs in. Servers
// that require email confirmation return only the user.
func (b *Backend) SignUp(ctx context.Context, creds models.Credentials) (session.AuthResponse, error) {
	return b.authenticate(ctx, wire.AuthSignupPath, nil, creds)
}

func (b *Backend) authenticate(ctx context.Context, path string, q url.Values, creds models.Credentials) (session.AuthResponse, error) {
	var tok wire.TokenResponse
	apiErr, err := b.do(ctx, http.MethodPost, path, q, nil, creds, &tok)
	if err != nil {
		return session.AuthResponse{}, err
	}
	if apiErr != nil {
		return session.Failed(apiErr), nil
	}

	user := tok.User
	if tok.AccessToken == "" {
		return session.AuthResponse{User: &user}, nil
	}

	sess := models.Session{User: user, AccessToken: tok.AccessToken}
	b.tracker.SignedIn(sess)
	return session.AuthResponse{User: &user, Session: &sess}, nil
}

// SignOut always clears the local session; a server-side failure is still
// reported.
func (b *Backend) SignOut(ctx context.Context) (*common.APIError, error) {
	var (
		apiErr *common.APIError
		err    error
	)
	if b.tracker.Current() != nil {
		apiErr, err = b.do(ctx, http.MethodPost, wire.AuthLogoutPath, nil, nil, nil, nil)
	}
	b.tracker.SignedOut()
	return apiErr, err
}

func (b *Backend) OnAuthStateChange(l session.Listener) *session.Subscription {
	return b.tracker.OnAuthStateChange(l)
}

func (b *Backend) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	hdr := http.Header{}
	if req.Single {
		hdr.Set("Accept", wire.MediaTypeSingle)
	}

	var data json.RawMessage
	apiErr, err := b.do(ctx, http.MethodGet, wire.RestPrefix+url.PathEscape(req.Table), wire.EncodeQuery(req), hdr, nil, &data)
	if err != nil {
		return query.Result{}, err
	}
	if apiErr != nil {
		return query.Failed(apiErr), nil
	}
	return query.Result{Data: data}, nil
}

func (b *Backend) Insert(ctx context.Context, table string, values any) (query.Result, error) {
	rows, err := query.NormalizeRows(values)
	if err != nil {
		return query.Result{}, err
	}

	hdr := http.Header{}
	hdr.Set(wire.HeaderPrefer, wire.PreferRepresentation)

	var data json.RawMessage
	apiErr, err := b.do(ctx, http.MethodPost, wire.RestPrefix+url.PathEscape(table), nil, hdr, rows.JSON(), &data)
	if err != nil {
		return query.Result{}, err
	}
	if apiErr != nil {
		return query.Failed(apiErr), nil
	}
	return query.Result{Data: data}, nil
}

// RequestUpload asks the server for a presigned upload target. It needs a
// signed-in session.
func (b *Backend) RequestUpload(ctx context.Context, req wire.UploadRequest) (wire.UploadTicket, *common.APIError, error) {
	if b.tracker.Current() == nil {
		return wire.UploadTicket{}, common.NewAPIError("not signed in", common.ErrorUnauthorized), nil
	}

	var ticket wire.UploadTicket
	apiErr, err := b.do(ctx, http.MethodPost, wire.UploadsPath, nil, nil, req, &ticket)
	if err != nil || apiErr != nil {
		return wire.UploadTicket{}, apiErr, err
	}
	return ticket, nil, nil
}

// RequestDownload asks the server for a presigned GET of key. It needs a
// signed-in session.
func (b *Backend) RequestDownload(ctx context.Context, key string) (wire.UploadTicket, *common.APIError, error) {
	if b.tracker.Current() == nil {
		return wire.UploadTicket{}, common.NewAPIError("not signed in", common.ErrorUnauthorized), nil
	}

	var ticket wire.UploadTicket
	apiErr, err := b.do(ctx, http.MethodGet, wire.UploadPath(key), nil, nil, nil, &ticket)
	if err != nil || apiErr != nil {
		return wire.UploadTicket{}, apiErr, err
	}
	return ticket, nil, nil
}

func (b *Backend) Channel(name string) *realtime.Channel {
	return realtime.NewChannel(name, b.hub)
}

func (b *Backend) Close() error {
	b.tracker.Close()
	b.client.CloseIdleConnections()
	return nil
}

// do sends one request. Transport and decoding failures are returned as
// errors; a non-2xx answer becomes an APIError.
func (b *Backend) do(ctx context.Context, method, path string, q url.Values, hdr http.Header, body, out any) (*common.APIError, error) {
	u := *b.base
	u.Path = b.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, ok := body.(json.RawMessage)
		if !ok {
			var err error
			if raw, err = json.Marshal(body); err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	for k, vs := range hdr {
		req.Header[k] = vs
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", wire.MediaTypeJSON)
	}
	if body != nil {
		req.Header.Set("Content-Type", wire.MediaTypeJSON)
	}
	req.Header.Set(wire.HeaderAPIKey, b.key)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+b.bearer())

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return toAPIError(resp.StatusCode, raw), nil
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil, nil
}

func (b *Backend) bearer() string {
	if s := b.tracker.Current(); s != nil && s.AccessToken != "" {
		return s.AccessToken
	}
	return b.key
}

func toAPIError(status int, raw []byte) *common.APIError {
	body := wire.DecodeError(raw)

	switch {
	case body.Code == wire.CodeNoSingleRow, status == http.StatusNotFound && body.Text() == common.MessageNotFound:
		return common.NotFound()
	case status == http.StatusNotAcceptable:
		return common.NotFound()
	}

	msg := body.Text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	var cause error
	switch body.Code {
	case wire.CodeUndefinedTable:
		return common.NewAPIError(msg, common.ErrorUnknownTable)
	case wire.CodeUndefinedColumn:
		return common.NewAPIError(msg, common.ErrorUnknownColumn)
	}

	switch status {
	case http.StatusBadRequest:
		if body.Error == "invalid_grant" || msg == common.MessageInvalidCredentials {
			cause = common.ErrorInvalidCredentials
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = common.ErrorUnauthorized
	case http.StatusNotFound:
		cause = common.ErrorNotFound
	case http.StatusUnprocessableEntity:
		if msg == common.MessageUserExists {
			cause = common.ErrorUserExists
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		cause = common.ErrorUnavailable
	default:
		if status >= 500 {
			cause = common.ErrorInternal
		}
	}
	return common.NewAPIError(msg, cause)
}
