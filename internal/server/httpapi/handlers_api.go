package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/media"
	"github.com/dmitrijs2005/newsinsight/internal/preferences"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

type themeBody struct {
	Theme preferences.Theme `json:"theme"`
}

func (s *Server) prefsAvailable(w http.ResponseWriter) bool {
	if s.deps.Prefs == nil {
		writeError(w, http.StatusServiceUnavailable, wire.ErrorBody{Message: "preferences are not available"})
		return false
	}
	return true
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	if !s.prefsAvailable(w) {
		return
	}
	t, err := s.deps.Prefs.Theme(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	if !s.prefsAvailable(w) {
		return
	}
	var body themeBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: "invalid request body"})
		return
	}
	if err := s.deps.Prefs.SetTheme(r.Context(), body.Theme); err != nil {
		if errors.Is(err, common.ErrorIncorrectTheme) {
			writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: err.Error()})
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	if !s.prefsAvailable(w) {
		return
	}
	t, err := s.deps.Prefs.Toggle(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Media == nil || !s.deps.Media.Enabled() {
		writeError(w, http.StatusServiceUnavailable, wire.ErrorBody{Message: media.ErrDisabled.Error()})
		return
	}

	var req wire.UploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: "invalid request body"})
		return
	}

	up, err := s.deps.Media.PresignUpload(r.Context(), req.Kind, claimsFrom(r.Context()).Subject, req.ContentType)
	switch {
	case errors.Is(err, media.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: err.Error()})
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.UploadTicket{Key: up.Key, URL: up.URL, Method: up.Method, ExpiresAt: up.ExpiresAt})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Media == nil || !s.deps.Media.Enabled() {
		writeError(w, http.StatusServiceUnavailable, wire.ErrorBody{Message: media.ErrDisabled.Error()})
		return
	}

	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || !media.ValidKey(key) {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: media.ErrInvalidKey.Error()})
		return
	}

	down, err := s.deps.Media.PresignDownload(r.Context(), key)
	switch {
	case errors.Is(err, media.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: err.Error()})
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.UploadTicket{Key: down.Key, URL: down.URL, Method: down.Method, ExpiresAt: down.ExpiresAt})
}
