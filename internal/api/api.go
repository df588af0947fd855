// Package api implements the HTTP handlers of the layout service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
	"github.com/voici5986/lumina-layout/internal/parse"
)

const maxRequestBody = 1 << 20

// Parser is the parse pipeline as seen by the handlers.
type Parser interface {
	Parse(ctx context.Context, req parse.Request, onPage func(layout.Page)) (layout.Structure, error)
	Engines() *layout.Registry
}

// API holds the handler dependencies.
type API struct {
	Parser Parser
	// Timeout bounds one parse; zero means no limit beyond the client's.
	Timeout time.Duration
	// AllowedOrigins restricts websocket upgrades; "*" accepts any origin.
	AllowedOrigins []string
}

type parseResponse struct {
	Structure layout.Structure `json:"structure"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Parse handles POST /parse.
func (a *API) Parse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	req, err := decodeParseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := a.parseContext(r.Context())
	defer cancel()

	st, err := a.Parser.Parse(ctx, req, nil)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logx.Log.Error().Err(err).Str("request_id", chiMiddleware.GetReqID(r.Context())).Str("pdf", req.PDFPath).Msg("parse failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Structure: st})
}

func (a *API) parseContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.Timeout > 0 {
		return context.WithTimeout(parent, a.Timeout)
	}
	return context.WithCancel(parent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parse.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrUnknownEngine), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
