package compose

import (
	"github.com/cockroachdb/errors"
)

// Question is an analytical question decomposed into ordered derivation
// steps. Final and FollowUps refer to steps through {{name}} placeholders in
// source position; a step may refer to the steps before it.
type Question struct {
	Steps     []Binding
	Final     string
	FollowUps []string
	// Expensive flags intermediate results worth computing only once.
	Expensive bool
}

func (q Question) statements() []string {
	statements := make([]string, 0, 1+len(q.FollowUps))
	statements = append(statements, q.Final)
	return append(statements, q.FollowUps...)
}

// Plan is a question rendered with one strategy.
//
// For the inline and named strategies Statements hold finished SQL. For the
// materialized strategy Artifacts are created once per session and
// Statements keep their placeholders, which are resolved against the
// session's live artifacts at execution time.
type Plan struct {
	Strategy   Strategy
	Artifacts  []Binding
	Statements []string
}

// Script renders every statement the plan issues, in execution order.
func (p Plan) Script() []string {
	if p.Strategy != StrategyMaterialized {
		return append([]string(nil), p.Statements...)
	}

	script := make([]string, 0, len(p.Artifacts)+len(p.Statements))
	for _, artifact := range p.Artifacts {
		script = append(script, createTempTable(artifact.Name, renderNames(trimStatement(artifact.Definition))))
	}
	for _, statement := range p.Statements {
		script = append(script, renderNames(trimStatement(statement)))
	}
	return script
}

// Compose renders q with strategy. The zero strategy picks RecommendFor(q).
func Compose(q Question, strategy Strategy) (Plan, error) {
	if q.Final == "" {
		return Plan{}, errors.New("question has no final statement")
	}
	if strategy == "" {
		strategy = RecommendFor(q)
	}
	if err := validateBindings(q.Steps); err != nil {
		return Plan{}, err
	}

	switch strategy {
	case StrategyInline:
		return composeInlinePlan(q)
	case StrategyNamed:
		plan := Plan{Strategy: StrategyNamed}
		for _, statement := range q.statements() {
			rendered, err := ComposeNamed(statement, q.Steps...)
			if err != nil {
				return Plan{}, err
			}
			plan.Statements = append(plan.Statements, rendered)
		}
		return plan, nil
	case StrategyMaterialized:
		declared := make(map[string]bool, len(q.Steps))
		for _, step := range q.Steps {
			declared[step.Name] = true
		}
		for _, statement := range q.statements() {
			for _, ref := range References(statement) {
				if !declared[ref] {
					return Plan{}, errors.Wrapf(ErrReference, "%q is not bound", ref)
				}
			}
		}
		return Plan{
			Strategy:   StrategyMaterialized,
			Artifacts:  append([]Binding(nil), q.Steps...),
			Statements: q.statements(),
		}, nil
	}
	return Plan{}, errors.Newf("unknown strategy %q", string(strategy))
}

// composeInlinePlan expands each step into the steps and statements that
// read it. Steps are already validated to reference only earlier steps, so
// one forward pass resolves every chain.
func composeInlinePlan(q Question) (Plan, error) {
	expanded := make([]Inline, 0, len(q.Steps))
	for _, step := range q.Steps {
		expression, err := ComposeInline(step.Definition, expanded...)
		if err != nil {
			return Plan{}, err
		}
		expanded = append(expanded, Inline{
			Slot:       step.Name,
			Expression: expression,
			Position:   PositionSource,
		})
	}

	plan := Plan{Strategy: StrategyInline}
	for _, statement := range q.statements() {
		rendered, err := ComposeInline(statement, expanded...)
		if err != nil {
			return Plan{}, err
		}
		plan.Statements = append(plan.Statements, rendered)
	}
	return plan, nil
}

func createTempTable(name, definition string) string {
	return "CREATE TEMP TABLE " + name + " AS " + definition
}
