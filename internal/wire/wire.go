// Package wire defines the HTTP shapes shared by the remote backend client
// and the self-hosted API: the GoTrue-style auth payloads and the
// PostgREST-style query string.
package wire

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
)

// Paths.
const (
	AuthTokenPath  = "/auth/v1/token"
	AuthSignupPath = "/auth/v1/signup"
	AuthLogoutPath = "/auth/v1/logout"
	AuthUserPath   = "/auth/v1/user"
	RestPrefix     = "/rest/v1/"
	ThemePath      = "/api/preferences/theme"
	UploadsPath    = "/api/uploads"
)

// Headers and their values.
const (
	HeaderAPIKey         = common.APIKeyHeaderName
	HeaderPrefer         = "Prefer"
	PreferRepresentation = "return=representation"
	MediaTypeJSON        = "application/json"
	MediaTypeSingle      = "application/vnd.pgrst.object+json"
	GrantTypePassword    = "password"
	TokenTypeBearer      = "bearer"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeNoSingleRow     = "PGRST116"
	CodeUndefinedTable  = "42P01"
	CodeUndefinedColumn = "42703"
)

// TokenResponse is returned by a successful password grant or sign-up.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        models.User `json:"user"`
}

// UploadRequest asks for a presigned upload of the given kind.
type UploadRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
}

// UploadTicket is a presigned target: PUT for a new upload, GET for an
// existing object.
type UploadTicket struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorBody covers the error fields used across the auth and rest APIs.
type ErrorBody struct {
	Code             string `json:"code,omitempty"`
	Message          string `json:"message,omitempty"`
	Msg              string `json:"msg,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Text picks the most descriptive message present.
func (e ErrorBody) Text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// DecodeError parses an error body; a body that is not JSON yields an
// empty ErrorBody.
func DecodeError(b []byte) ErrorBody {
	var e ErrorBody
	_ = json.Unmarshal(b, &e)
	return e
}

// Reserved query parameters; every other key is a column filter.
const (
	paramSelect = "select"
	paramOrder  = "order"
	paramLimit  = "limit"
	opEq        = "eq."
)

// EncodeQuery renders the read part of req as query parameters.
func EncodeQuery(req query.Request) url.Values {
	v := url.Values{}
	cols := req.Columns
	if cols == "" {
		cols = query.AllColumns
	}
	v.Set(paramSelect, cols)
	for _, f := range req.Filters {
		v.Add(f.Column, opEq+fmt.Sprint(f.Value))
	}
	if req.Order != nil {
		dir := "desc"
		if req.Order.Ascending {
			dir = "asc"
		}
		v.Set(paramOrder, req.Order.Column+"."+dir)
	}
	if req.Limit > 0 {
		v.Set(paramLimit, strconv.Itoa(req.Limit))
	}
	return v
}

// ParseQuery is the inverse of EncodeQuery. Only the eq operator is
// understood; filters come back sorted by column.
func ParseQuery(table string, v url.Values) (query.Request, error) {
	req := query.Request{Table: table, Columns: query.AllColumns}

	if s := v.Get(paramSelect); s != "" {
		req.Columns = s
	}

	if o := v.Get(paramOrder); o != "" {
		col, dir, found := strings.Cut(o, ".")
		if col == "" {
			return query.Request{}, fmt.Errorf("bad order %q", o)
		}
		asc := true
		if found {
			switch dir {
			case "asc":
			case "desc":
				asc = false
			default:
				return query.Request{}, fmt.Errorf("bad order direction %q", dir)
			}
		}
		req.Order = &query.Ordering{Column: col, Ascending: asc}
	}

	if l := v.Get(paramLimit); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return query.Request{}, fmt.Errorf("bad limit %q", l)
		}
		req.Limit = n
	}

	keys := make([]string, 0, len(v))
	for k := range v {
		if k == paramSelect || k == paramOrder || k == paramLimit {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, raw := range v[k] {
			val, ok := strings.CutPrefix(raw, opEq)
			if !ok {
				return query.Request{}, fmt.Errorf("unsupported filter %s=%s", k, raw)
			}
			req.Filters = append(req.Filters, query.Filter{Column: k, Value: val})
		}
	}
	return req, nil
}

// UploadPath is the download route for an object key.
func UploadPath(key string) string {
	return UploadsPath + "/" + key
}
