package httpapi

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/exercises"
)

func (a *API) HandleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	all := a.runner.Catalog().All()
	response := exercisesResponse{
		Exercises: make([]exerciseResponse, 0, len(all)),
	}
	for _, exercise := range all {
		response.Exercises = append(response.Exercises, toExerciseResponse(exercise))
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleExerciseSQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	strategy, err := parseStrategyParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	exercise, plan, err := a.runner.Plan(strings.TrimSpace(r.PathValue("id")), strategy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := sqlResponse{
		ID:         exercise.ID,
		Strategy:   plan.Strategy.String(),
		Statements: plan.Statements,
		Script:     plan.Script(),
	}
	for _, artifact := range plan.Artifacts {
		response.Artifacts = append(response.Artifacts, artifactResponse{
			Name:       artifact.Name,
			Definition: artifact.Definition,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleExerciseAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	strategy, err := parseStrategyParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	answer, err := a.runner.Answer(r.Context(), strings.TrimSpace(r.PathValue("id")), strategy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		ID:       answer.Exercise.ID,
		Strategy: answer.Strategy.String(),
		Results:  toResultSetResponses(answer.Results),
	})
}

func (a *API) HandleExerciseVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	answers, err := a.runner.Verify(r.Context(), id)
	if err != nil && !errors.Is(err, exercises.ErrNotEquivalent) {
		writeServiceError(w, err)
		return
	}

	response := verifyResponse{
		ID:         id,
		Equivalent: err == nil,
		Strategies: make([]string, 0, len(answers)),
	}
	for _, answer := range answers {
		response.Strategies = append(response.Strategies, answer.Strategy.String())
	}
	if err != nil {
		// Divergent strategies are a finding, not a failed request.
		response.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}
