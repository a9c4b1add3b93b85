// Package httpapi serves the NewsInsight facade over HTTP.
//
// The auth routes follow the GoTrue shape and the table routes the
// PostgREST shape defined in internal/wire, so the remote backend strategy
// can point at this server. Sign-in mints an HS256 access token; table
// writes, uploads and /auth/v1/user require it as a Bearer token.
//
// Additional routes:
//
//	GET  /api/preferences/theme          {"theme":"dark"}
//	PUT  /api/preferences/theme          {"theme":"light"}
//	POST /api/preferences/theme/toggle
//	POST /api/uploads                    presigned PUT for verification media
//	GET  /healthz
//	GET  /metrics                        Prometheus exposition
package httpapi
