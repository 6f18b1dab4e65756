package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/compose"
	"musicstore-sql/internal/exercises"
)

const prompt = "musicstore> "

const helpText = `Commands:
  list                          exercises with their recommended strategy
  show <id>                     prompt and steps of an exercise
  sql <id> [strategy]           composed SQL for an exercise
  run <id> [strategy]           answer an exercise in this session
  materialize <name> <select>   create a temporary table in this session
  query <sql>                   run a statement; {{name}} reads an artifact
  drop <name>                   drop an artifact early
  artifacts                     live artifacts of this session
  help                          this text
  exit                          close the session and quit`

// Shell is a line-oriented prompt over one live session. Artifacts created
// with materialize stay readable until drop or exit.
type Shell struct {
	runner  *exercises.Runner
	session *compose.Session
	out     io.Writer
}

// Run opens a session, reads commands from in until exit or EOF and closes
// the session, dropping every artifact, before returning.
func Run(ctx context.Context, engine *compose.Engine, runner *exercises.Runner, in io.Reader, out io.Writer) error {
	return engine.WithSession(ctx, func(session *compose.Session) error {
		shell := &Shell{
			runner:  runner,
			session: session,
			out:     out,
		}
		return shell.loop(ctx, in)
	})
}

func (s *Shell) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			done, err := s.Execute(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			if done {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		fmt.Fprint(s.out, prompt)
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// Execute runs one command line. done reports an exit request.
func (s *Shell) Execute(ctx context.Context, line string) (done bool, err error) {
	command, rest := splitWord(line)
	switch strings.ToLower(command) {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "list":
		s.list()
	case "show":
		err = s.show(rest)
	case "sql":
		err = s.sql(rest)
	case "run":
		err = s.run(ctx, rest)
	case "materialize":
		err = s.materialize(ctx, rest)
	case "query":
		err = s.query(ctx, rest)
	case "drop":
		err = s.drop(ctx, rest)
	case "artifacts":
		s.artifacts()
	default:
		err = errors.Newf("unknown command %q, try help", command)
	}
	return false, err
}

func (s *Shell) list() {
	for _, exercise := range s.runner.Catalog().All() {
		fmt.Fprintf(s.out, "%-32s %-12s %s\n", exercise.ID, exercise.Recommended(), exercise.Title)
	}
}

func (s *Shell) show(rest string) error {
	id, _ := splitWord(rest)
	if id == "" {
		return errors.New("usage: show <id>")
	}
	exercise, ok := s.runner.Catalog().Get(id)
	if !ok {
		return errors.Wrapf(exercises.ErrExerciseNotFound, "%q", id)
	}

	fmt.Fprintf(s.out, "%s\n%s\n", exercise.Title, exercise.Prompt)
	for _, step := range exercise.Question.Steps {
		fmt.Fprintf(s.out, "  step %s\n", step.Name)
	}
	fmt.Fprintf(s.out, "recommended: %s\n", exercise.Recommended())
	return nil
}

func (s *Shell) sql(rest string) error {
	id, strategy, err := parseTarget(rest, "sql")
	if err != nil {
		return err
	}
	_, plan, err := s.runner.Plan(id, strategy)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "-- %s\n", plan.Strategy)
	for _, statement := range plan.Script() {
		fmt.Fprintf(s.out, "%s;\n", statement)
	}
	return nil
}

func (s *Shell) run(ctx context.Context, rest string) error {
	id, strategy, err := parseTarget(rest, "run")
	if err != nil {
		return err
	}
	answer, err := s.runner.AnswerIn(ctx, s.session, id, strategy)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "-- %s\n", answer.Strategy)
	for idx, result := range answer.Results {
		if idx > 0 {
			fmt.Fprintln(s.out)
		}
		printResult(s.out, result)
	}
	return nil
}

func (s *Shell) materialize(ctx context.Context, rest string) error {
	name, definition := splitWord(rest)
	if name == "" || definition == "" {
		return errors.New("usage: materialize <name> <select>")
	}
	artifact, err := s.session.Materialize(ctx, name, definition)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %d rows\n", artifact.Name, artifact.Rows)
	return nil
}

func (s *Shell) query(ctx context.Context, rest string) error {
	if rest == "" {
		return errors.New("usage: query <sql>")
	}
	result, err := s.session.Query(ctx, rest)
	if err != nil {
		return err
	}
	printResult(s.out, result)
	return nil
}

func (s *Shell) drop(ctx context.Context, rest string) error {
	name, _ := splitWord(rest)
	if name == "" {
		return errors.New("usage: drop <name>")
	}
	if err := s.session.Drop(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "dropped %s\n", name)
	return nil
}

func (s *Shell) artifacts() {
	live := s.session.Artifacts()
	if len(live) == 0 {
		fmt.Fprintln(s.out, "no artifacts")
		return
	}
	for _, artifact := range live {
		fmt.Fprintf(s.out, "%s (%d rows)\n", artifact.Name, artifact.Rows)
	}
}

func parseTarget(rest, command string) (string, compose.Strategy, error) {
	id, tail := splitWord(rest)
	if id == "" {
		return "", "", errors.Newf("usage: %s <id> [strategy]", command)
	}
	strategy, err := compose.ParseStrategy(tail)
	if err != nil {
		return "", "", err
	}
	return id, strategy, nil
}

func printResult(out io.Writer, result *compose.ResultSet) {
	fmt.Fprintln(out, result.String())
	fmt.Fprintf(out, "(%d rows)\n", result.Len())
}

func splitWord(line string) (string, string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}
