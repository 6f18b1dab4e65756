package httpapi

type exerciseResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Prompt      string   `json:"prompt"`
	Recommended string   `json:"recommended_strategy"`
	Steps       []string `json:"steps"`
}

type exercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
}

type artifactResponse struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

type sqlResponse struct {
	ID         string             `json:"id"`
	Strategy   string             `json:"strategy"`
	Artifacts  []artifactResponse `json:"artifacts,omitempty"`
	Statements []string           `json:"statements"`
	Script     []string           `json:"script"`
}

type resultSetResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type answerResponse struct {
	ID       string              `json:"id"`
	Strategy string              `json:"strategy"`
	Results  []resultSetResponse `json:"results"`
}

type verifyResponse struct {
	ID         string   `json:"id"`
	Equivalent bool     `json:"equivalent"`
	Strategies []string `json:"strategies"`
	Error      string   `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
