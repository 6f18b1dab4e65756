package httpapi

import (
	"net/http"

	"musicstore-sql/internal/exercises"
)

func NewRouter(runner *exercises.Runner) http.Handler {
	api := NewAPI(runner)

	mux := http.NewServeMux()
	mux.HandleFunc("/exercises", api.HandleExercises)
	mux.HandleFunc("/exercises/{id}/sql", api.HandleExerciseSQL)
	mux.HandleFunc("/exercises/{id}/answer", api.HandleExerciseAnswer)
	mux.HandleFunc("/exercises/{id}/verify", api.HandleExerciseVerify)

	return logRequests(mux, defaultMaxLogBytes)
}
