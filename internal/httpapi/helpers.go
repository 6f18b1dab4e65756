package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/compose"
	"musicstore-sql/internal/exercises"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exercises.ErrExerciseNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "exercise not found"})
	case errors.Is(err, compose.ErrReference),
		errors.Is(err, compose.ErrNameConflict),
		errors.Is(err, compose.ErrInvalidName):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, compose.ErrEngine):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func parseStrategyParam(r *http.Request) (compose.Strategy, error) {
	return compose.ParseStrategy(strings.TrimSpace(r.URL.Query().Get("strategy")))
}

func toExerciseResponse(exercise exercises.Exercise) exerciseResponse {
	steps := make([]string, 0, len(exercise.Question.Steps))
	for _, step := range exercise.Question.Steps {
		steps = append(steps, step.Name)
	}
	return exerciseResponse{
		ID:          exercise.ID,
		Title:       exercise.Title,
		Prompt:      exercise.Prompt,
		Recommended: exercise.Recommended().String(),
		Steps:       steps,
	}
}

func toResultSetResponses(results []*compose.ResultSet) []resultSetResponse {
	response := make([]resultSetResponse, 0, len(results))
	for _, result := range results {
		rows := result.Rows
		if rows == nil {
			rows = [][]any{}
		}
		response = append(response, resultSetResponse{
			Columns: result.Columns,
			Rows:    rows,
		})
	}
	return response
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
