package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/money-model/internal/costs"
	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/presets"
	"github.com/Simplici0/money-model/internal/projection"
)

const maxAPIBody = 1 << 20

type calculateRequest struct {
	Inputs    moneymodel.FunnelInputs `json:"inputs"`
	CostItems []costs.Item            `json:"costItems"`
}

type calculateResponse struct {
	Inputs        moneymodel.FunnelInputs `json:"inputs"`
	Result        moneymodel.Result       `json:"result"`
	Health        string                  `json:"health"`
	Insights      []moneymodel.Insight    `json:"insights"`
	DetailedCosts bool                    `json:"detailedCosts"`
}

type projectRequest struct {
	Inputs    moneymodel.FunnelInputs `json:"inputs"`
	CostItems []costs.Item            `json:"costItems"`
	Controls  *projection.Controls    `json:"controls"`
}

type projectResponse struct {
	Result  moneymodel.Result   `json:"result"`
	Records []projection.Record `json:"records"`
	Summary projection.Summary  `json:"summary"`
}

func (s *server) handleAPICalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateInputs(req.Inputs); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := s.evaluate(req.Inputs, req.CostItems, projection.Controls{})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		Inputs:        ev.Inputs,
		Result:        ev.Result,
		Health:        moneymodel.HealthLabel(ev.Result),
		Insights:      ev.Insights,
		DetailedCosts: ev.DetailedCosts,
	})
}

func (s *server) handleAPIProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateInputs(req.Inputs); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	controls := projection.DefaultControls()
	if req.Controls != nil {
		controls = *req.Controls
	}
	if err := controls.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := s.evaluate(req.Inputs, req.CostItems, controls)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		Result:  ev.Result,
		Records: ev.Records,
		Summary: ev.Summary,
	})
}

func (s *server) handleAPIPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func (s *server) handleAPIPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(chi.URLParam(r, "key"))
	if errors.Is(err, presets.ErrUnknownPreset) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("get preset", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load preset")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
