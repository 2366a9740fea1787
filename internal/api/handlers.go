package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/httputil"
	"github.com/benefits-data/marginal.report/internal/situation"
)

// maxBodyBytes caps request bodies; household parameters are small and
// anything bigger is junk.
const maxBodyBytes = 1 << 20

// runIDHeader carries the pipeline run ID so a failed request can be matched
// to its log lines.
const runIDHeader = "X-Run-ID"

// decodeParams reads the request body into household parameters. Unknown
// fields pass through; malformed JSON is the caller's problem.
func decodeParams(w http.ResponseWriter, r *http.Request) (*household.Params, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	var params household.Params
	if err := json.NewDecoder(body).Decode(&params); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	return &params, nil
}

// writeError maps a pipeline failure onto the response envelope. Rejected
// input and untranslatable scenarios are the caller's fault; an exceeded
// deadline is a timeout; an engine failure is an upstream outage the caller
// may retry later; everything else, row misalignment included, is a bug here.
func writeError(w http.ResponseWriter, err error) {
	var verr *household.ValidationError
	var terr *situation.TranslationError
	var eerr *engine.Error
	switch {
	case errors.As(err, &verr), errors.As(err, &terr):
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.KindInvalidInput, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httputil.WriteJSONError(w, http.StatusGatewayTimeout, httputil.KindTimeout, err.Error())
	case errors.As(err, &eerr):
		httputil.WriteJSONError(w, http.StatusBadGateway, httputil.KindEngineFailure, err.Error())
	default:
		httputil.WriteJSONError(w, http.StatusInternalServerError, httputil.KindInternal, err.Error())
	}
}

// calculateMarginalChild runs the marginal-child analysis for the posted
// household and returns one row per (child count, income) pair, child counts
// ascending, incomes ascending within each count.
func (s *Server) calculateMarginalChild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	params, err := decodeParams(w, r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows, info, err := s.pipeline.RunMarginal(r.Context(), params)
	w.Header().Set(runIDHeader, info.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, rows)
}

// calculateCliff sweeps income for the posted fixed household and returns
// the per-program amounts at every point.
func (s *Server) calculateCliff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	params, err := decodeParams(w, r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows, info, err := s.pipeline.RunCliff(r.Context(), params)
	w.Header().Set(runIDHeader, info.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, rows)
}

// calculatePoint evaluates the posted household at its single stated income
// and returns the program breakdown.
func (s *Server) calculatePoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	params, err := decodeParams(w, r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	breakdown, info, err := s.pipeline.RunPoint(r.Context(), params)
	w.Header().Set(runIDHeader, info.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, breakdown)
}

type statesResponse struct {
	States []household.State `json:"states"`
}

// listStates returns the supported jurisdictions, ordered by name.
func (s *Server) listStates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, statesResponse{States: household.States})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, healthResponse{Status: "ok", Version: s.version})
}
