package httpapi

import "musicstore-sql/internal/exercises"

type API struct {
	runner *exercises.Runner
}

func NewAPI(runner *exercises.Runner) *API {
	return &API{runner: runner}
}
