package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cjrt007/Tornado.Ai/auth"
	"github.com/cjrt007/Tornado.Ai/cache"
	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/resilience"
	"github.com/cjrt007/Tornado.Ai/tools"
)

type commandRequest struct {
	ToolID string         `json:"toolId"`
	Params map[string]any `json:"params"`

	// UseCache defaults to true when omitted.
	UseCache *bool  `json:"useCache"`
	UserID   string `json:"userId"`
}

type invalidateRequest struct {
	ToolID string         `json:"toolId"`
	Params map[string]any `json:"params"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *api) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.ToolID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "toolId is required"})
		return
	}

	cmd := tools.Command{
		ToolID:   req.ToolID,
		Params:   req.Params,
		UseCache: req.UseCache == nil || *req.UseCache,
		UserID:   req.UserID,
	}
	if cmd.UserID == "" {
		cmd.UserID = auth.PrincipalFromContext(r.Context())
	}

	resp, err := a.dispatcher.Execute(r.Context(), cmd)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, tools.ErrUnknownTool):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown tool %q", req.ToolID)})
	case errors.Is(err, cache.ErrInvalidID), errors.Is(err, cache.ErrIDTooLong), errors.Is(err, cache.ErrUnserializable):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrBulkheadFull):
		writeJSON(w, http.StatusServiceUnavailable, resp)
	case errors.Is(err, resilience.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, resp)
	default:
		a.logger.Error(r.Context(), "command failed",
			observe.F(observe.AttrToolID, req.ToolID),
			observe.F("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func (a *api) listTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": a.dispatcher.Catalog().IDs()})
}

func (a *api) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.manager.Stats())
}

func (a *api) invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.manager.Invalidate(r.Context(), req.ToolID, req.Params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	a.logger.Info(r.Context(), "cache entry invalidated",
		observe.F("user.id", auth.PrincipalFromContext(r.Context())),
		observe.F(observe.AttrToolID, req.ToolID),
	)
	writeJSON(w, http.StatusOK, map[string]any{"toolId": req.ToolID, "invalidated": true})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
