package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	req, err := wire.ParseQuery(table, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: err.Error()})
		return
	}
	req.Single = strings.Contains(r.Header.Get("Accept"), wire.MediaTypeSingle)

	res, err := s.deps.Data.Execute(r.Context(), req)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if res.Error != nil {
		status, body := apiErrorStatus(res.Error, req.Single)
		writeError(w, status, body)
		return
	}

	ct := wire.MediaTypeJSON
	if req.Single {
		ct = wire.MediaTypeSingle
	}
	writeRaw(w, http.StatusOK, ct, dataOrEmpty(res.Data))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var body json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: "invalid request body"})
		return
	}
	rows, err := query.NormalizeRows(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorBody{Message: err.Error()})
		return
	}

	res, err := s.deps.Data.Insert(r.Context(), table, rows)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if res.Error != nil {
		status, body := apiErrorStatus(res.Error, false)
		writeError(w, status, body)
		return
	}

	if r.Header.Get(wire.HeaderPrefer) != wire.PreferRepresentation {
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeRaw(w, http.StatusCreated, wire.MediaTypeJSON, dataOrEmpty(res.Data))
}

func dataOrEmpty(b json.RawMessage) []byte {
	if len(b) == 0 {
		return []byte("[]")
	}
	return b
}
