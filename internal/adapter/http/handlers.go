package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/hvi-planner/internal/domain"
	"github.com/couchcryptid/hvi-planner/internal/planner"
)

const maxBodyBytes = 1 << 20

// weightsBody fields are optional; omitted weights take their defaults.
type weightsBody struct {
	Canopy     *float64 `json:"canopy"`
	Impervious *float64 `json:"impervious"`
	Seniors    *float64 `json:"seniors"`
	Income     *float64 `json:"income"`
}

type scenarioBody struct {
	Name         *string  `json:"name"`
	SeverityMult *float64 `json:"severity_mult"`
}

type simulateBody struct {
	Weights       *weightsBody         `json:"weights"`
	Scenario      *scenarioBody        `json:"scenario"`
	Interventions domain.Interventions `json:"interventions"`
}

type optimizeBody struct {
	Budget   *float64           `json:"budget"`
	Weights  *weightsBody       `json:"weights"`
	Scenario *scenarioBody      `json:"scenario"`
	Costs    map[string]float64 `json:"costs"`
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	fc := s.planner.GetScored(r.Context(), domain.DefaultWeights(), domain.DefaultScenario())
	sharedobs.WriteJSON(w, http.StatusOK, fc)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body simulateBody
	if !s.decode(w, r, "simulate", &body) {
		return
	}

	weights, scenario, errs := parseModel(body.Weights, body.Scenario)
	if body.Interventions == nil {
		errs = append(errs, errors.New("interventions is required"))
	}
	if len(errs) > 0 {
		s.reject(w, "simulate", errs...)
		return
	}

	res := s.planner.Simulate(r.Context(), planner.SimulationRequest{
		Weights:       weights,
		Scenario:      scenario,
		Interventions: body.Interventions,
	})
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeBody
	if !s.decode(w, r, "optimize", &body) {
		return
	}

	weights, scenario, errs := parseModel(body.Weights, body.Scenario)
	switch {
	case body.Budget == nil:
		errs = append(errs, errors.New("budget is required"))
	case math.IsNaN(*body.Budget) || math.IsInf(*body.Budget, 0):
		errs = append(errs, errors.New("budget must be a finite number"))
	}
	if len(errs) > 0 {
		s.reject(w, "optimize", errs...)
		return
	}

	plan := s.planner.Optimize(r.Context(), planner.OptimizationRequest{
		Budget:   *body.Budget,
		Weights:  weights,
		Scenario: scenario,
		Costs:    body.Costs,
	})
	sharedobs.WriteJSON(w, http.StatusOK, plan)
}

// decode reads a single JSON value from the body into v, writing a 400 and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, operation string, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.reject(w, operation, fmt.Errorf("malformed JSON body: %w", err))
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		s.reject(w, operation, errors.New("malformed JSON body: unexpected data after the JSON object"))
		return false
	}
	return true
}

func (s *Server) reject(w http.ResponseWriter, operation string, errs ...error) {
	details := make([]string, len(errs))
	for i, err := range errs {
		details[i] = err.Error()
	}
	s.metrics.Requests.WithLabelValues(operation, "invalid").Inc()
	s.logger.Debug("rejected request", "operation", operation, "details", details)
	sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Details: details})
}

// parseModel applies defaults to the optional weight fields and validates both
// weights and scenario. weights and scenario objects themselves are required.
func parseModel(wb *weightsBody, sb *scenarioBody) (domain.Weights, domain.Scenario, []error) {
	var errs []error

	w := domain.DefaultWeights()
	if wb == nil {
		errs = append(errs, errors.New("weights is required"))
	} else {
		setIfPresent(&w.Canopy, wb.Canopy)
		setIfPresent(&w.Impervious, wb.Impervious)
		setIfPresent(&w.Seniors, wb.Seniors)
		setIfPresent(&w.Income, wb.Income)
		if err := w.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	sc := domain.DefaultScenario()
	switch {
	case sb == nil:
		errs = append(errs, errors.New("scenario is required"))
	case sb.Name == nil:
		errs = append(errs, errors.New("scenario.name is required"))
	default:
		sc.Name = *sb.Name
		setIfPresent(&sc.SeverityMult, sb.SeverityMult)
		if err := sc.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return w, sc, errs
}

func setIfPresent(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

