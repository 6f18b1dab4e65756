package exercises

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/compose"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrNotEquivalent    = errors.New("strategies returned different results")
)

// Answer is an exercise evaluated with one strategy: one result set per
// statement (final first, then follow-ups).
type Answer struct {
	Exercise Exercise
	Strategy compose.Strategy
	Plan     compose.Plan
	Results  []*compose.ResultSet
}

type Runner struct {
	engine  *compose.Engine
	catalog *Catalog
}

func NewRunner(engine *compose.Engine, catalog *Catalog) *Runner {
	if catalog == nil {
		catalog = Default()
	}
	return &Runner{
		engine:  engine,
		catalog: catalog,
	}
}

func (r *Runner) Catalog() *Catalog {
	return r.catalog
}

// Plan composes an exercise without running it. The zero strategy resolves
// to the exercise's recommendation.
func (r *Runner) Plan(id string, strategy compose.Strategy) (Exercise, compose.Plan, error) {
	exercise, ok := r.catalog.Get(strings.TrimSpace(id))
	if !ok {
		return Exercise{}, compose.Plan{}, errors.Wrapf(ErrExerciseNotFound, "%q", id)
	}
	plan, err := compose.Compose(exercise.Question, strategy)
	if err != nil {
		return Exercise{}, compose.Plan{}, err
	}
	return exercise, plan, nil
}

// Answer runs an exercise in a fresh session, which is always closed before
// returning so materialized artifacts never outlive the answer.
func (r *Runner) Answer(ctx context.Context, id string, strategy compose.Strategy) (Answer, error) {
	if _, _, err := r.Plan(id, strategy); err != nil {
		return Answer{}, err
	}

	var answer Answer
	err := r.engine.WithSession(ctx, func(session *compose.Session) error {
		var answerErr error
		answer, answerErr = r.AnswerIn(ctx, session, id, strategy)
		return answerErr
	})
	if err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// AnswerIn runs an exercise on a session the caller already holds. Artifacts
// the plan creates are dropped before returning, even on failure; artifacts
// that were live beforehand are left alone.
func (r *Runner) AnswerIn(ctx context.Context, session *compose.Session, id string, strategy compose.Strategy) (Answer, error) {
	exercise, plan, err := r.Plan(id, strategy)
	if err != nil {
		return Answer{}, err
	}

	results, err := execute(ctx, session, plan)
	if err != nil {
		return Answer{}, errors.Wrapf(err, "exercise %q (%s)", exercise.ID, plan.Strategy)
	}
	return Answer{
		Exercise: exercise,
		Strategy: plan.Strategy,
		Plan:     plan,
		Results:  results,
	}, nil
}

func execute(ctx context.Context, session *compose.Session, plan compose.Plan) (results []*compose.ResultSet, err error) {
	before := make(map[string]bool)
	for _, artifact := range session.Artifacts() {
		before[artifact.Name] = true
	}
	defer func() {
		live := session.Artifacts()
		for idx := len(live) - 1; idx >= 0; idx-- {
			if name := live[idx].Name; !before[name] {
				err = errors.CombineErrors(err, session.Drop(context.Background(), name))
			}
		}
	}()
	return session.Execute(ctx, plan)
}

// Verify answers an exercise with every strategy and checks that all of them
// return identical result sets.
func (r *Runner) Verify(ctx context.Context, id string) ([]Answer, error) {
	answers := make([]Answer, 0, len(compose.Strategies))
	for _, strategy := range compose.Strategies {
		answer, err := r.Answer(ctx, id, strategy)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	baseline := answers[0]
	for _, answer := range answers[1:] {
		if len(answer.Results) != len(baseline.Results) {
			return answers, errors.Wrapf(ErrNotEquivalent, "exercise %q: %s returned %d result sets, %s returned %d",
				id, baseline.Strategy, len(baseline.Results), answer.Strategy, len(answer.Results))
		}
		for idx := range answer.Results {
			if !baseline.Results[idx].Equal(answer.Results[idx]) {
				return answers, errors.Wrapf(ErrNotEquivalent, "exercise %q statement %d: %s and %s differ",
					id, idx+1, baseline.Strategy, answer.Strategy)
			}
		}
	}
	return answers, nil
}

// VerifyAll verifies every exercise in catalog order and stops at the first
// failure.
func (r *Runner) VerifyAll(ctx context.Context) error {
	for _, exercise := range r.catalog.All() {
		if _, err := r.Verify(ctx, exercise.ID); err != nil {
			return err
		}
	}
	return nil
}
