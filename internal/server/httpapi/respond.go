package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", wire.MediaTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, body wire.ErrorBody) {
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(v)
}

// apiErrorStatus maps a structured failure to a status and wire body.
func apiErrorStatus(e *common.APIError, single bool) (int, wire.ErrorBody) {
	body := wire.ErrorBody{Message: e.Message}
	switch {
	case errors.Is(e, common.ErrorNotFound):
		if single {
			body.Code = wire.CodeNoSingleRow
			return http.StatusNotAcceptable, body
		}
		return http.StatusNotFound, body
	case errors.Is(e, common.ErrorUnknownTable):
		body.Code = wire.CodeUndefinedTable
		return http.StatusNotFound, body
	case errors.Is(e, common.ErrorUnknownColumn):
		body.Code = wire.CodeUndefinedColumn
		return http.StatusBadRequest, body
	case errors.Is(e, common.ErrorInvalidCredentials):
		body.Error = "invalid_grant"
		body.ErrorDescription = e.Message
		return http.StatusBadRequest, body
	case errors.Is(e, common.ErrorUserExists):
		return http.StatusUnprocessableEntity, wire.ErrorBody{Msg: e.Message}
	case errors.Is(e, common.ErrorUnauthorized):
		return http.StatusUnauthorized, body
	}
	return http.StatusBadRequest, body
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, wire.ErrorBody{Message: http.StatusText(http.StatusInternalServerError)})
}
