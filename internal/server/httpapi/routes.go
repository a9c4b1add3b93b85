package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	if len(s.deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", common.AuthorizationHeaderName, "Content-Type", wire.HeaderAPIKey, wire.HeaderPrefer},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))

	// Auth
	r.Post(wire.AuthTokenPath, s.handleToken)
	r.Post(wire.AuthSignupPath, s.handleSignup)
	r.With(s.requireToken).Post(wire.AuthLogoutPath, s.handleLogout)
	r.With(s.requireToken).Get(wire.AuthUserPath, s.handleUser)

	// Tables
	r.Get(wire.RestPrefix+"{table}", s.handleSelect)
	r.With(s.requireToken).Post(wire.RestPrefix+"{table}", s.handleInsert)

	// Preferences & media
	r.Get(wire.ThemePath, s.handleGetTheme)
	r.Put(wire.ThemePath, s.handleSetTheme)
	r.Post(wire.ThemePath+"/toggle", s.handleToggleTheme)
	r.With(s.requireToken).Post(wire.UploadsPath, s.handleUpload)
	r.With(s.requireToken).Get(wire.UploadsPath+"/*", s.handleDownload)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, wire.ErrorBody{Message: http.StatusText(http.StatusNotFound)})
	})

	return r
}
