package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/encodeous/netsim/cipher"
	"github.com/encodeous/netsim/state"
)

// maxBodyBytes bounds every request body, topologies included
const maxBodyBytes = 1 << 20

type errorResp struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// writeJSON writes v with the given code. Encoding errors are only logged since the header is already sent.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		s.logger.Error("failed to encode response", "path", r.URL.Path, "err", err)
	}
}

// writeError maps structural errors to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, state.ErrInvalidParameter) ||
		errors.Is(err, state.ErrInvalidTopology) ||
		errors.Is(err, cipher.ErrEmptyKey) {
		code = http.StatusBadRequest
	} else {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, r, code, errorResp{Error: err.Error()})
}

// readJSON decodes the request body into v. An empty body leaves v untouched so every field keeps its default.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed request body: %w", state.ErrInvalidParameter, err)
	}
	return nil
}

// pick returns *p, or def when the field was absent from the request.
func pick[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
