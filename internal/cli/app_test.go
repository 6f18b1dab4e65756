package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/compose"
	"musicstore-sql/internal/exercises"
	"musicstore-sql/internal/musicstore"
)

// newTestEngine uses a single connection so a later session reuses the
// shell's connection and would see any temporary table it left behind.
func newTestEngine(t *testing.T) *compose.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cli.db")
	db, err := musicstore.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := musicstore.Seed(context.Background(), db, musicstore.Fixture()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := musicstore.Close(db); err != nil {
		t.Fatalf("close store: %v", err)
	}

	engine, err := compose.Open(compose.Options{Path: path, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func runScript(t *testing.T, engine *compose.Engine, script string) string {
	t.Helper()

	var out bytes.Buffer
	runner := exercises.NewRunner(engine, nil)
	if err := Run(context.Background(), engine, runner, strings.NewReader(script), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestShellSessionArtifacts(t *testing.T) {
	engine := newTestEngine(t)

	output := runScript(t, engine, strings.Join([]string{
		"materialize long_tracks SELECT track_id FROM track WHERE milliseconds > 250000",
		"materialize long_tracks SELECT 1",
		"artifacts",
		"query SELECT COUNT(*) AS n FROM {{long_tracks}}",
		"drop long_tracks",
		"artifacts",
		"query SELECT * FROM {{long_tracks}}",
		"bogus",
		"exit",
		"list",
	}, "\n"))

	for _, want := range []string{
		"long_tracks: 3 rows\n",
		"error: artifact \"long_tracks\" already exists in this session",
		"long_tracks (3 rows)\n",
		"n\n3\n(1 rows)\n",
		"dropped long_tracks\n",
		"no artifacts\n",
		"error: artifact \"long_tracks\" is not live in this session",
		"error: unknown command \"bogus\", try help",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "rock-jazz-minutes-gap") {
		t.Fatalf("commands after exit should not run:\n%s", output)
	}
}

func TestShellDropsArtifactsOnEOF(t *testing.T) {
	engine := newTestEngine(t)

	output := runScript(t, engine, "materialize kept SELECT 1 AS n\n")
	if !strings.Contains(output, "kept: 1 rows") {
		t.Fatalf("unexpected output:\n%s", output)
	}

	err := engine.WithSession(context.Background(), func(session *compose.Session) error {
		_, err := session.Query(context.Background(), "SELECT * FROM temp.kept")
		return err
	})
	if !errors.Is(err, compose.ErrReference) {
		t.Fatalf("expected the artifact to be gone, got %v", err)
	}
}

func TestShellExercises(t *testing.T) {
	engine := newTestEngine(t)

	output := runScript(t, engine, strings.Join([]string{
		"list",
		"show top-support-rep",
		"sql average-customer-spend materialized",
		"run returning-customers-2022 named",
		"run tracks-longer-than-average fastest",
		"show nope",
	}, "\n"))

	for _, want := range []string{
		"rock-jazz-minutes-gap",
		"Best-selling support rep\n",
		"  step rep_sales\n",
		"recommended: named\n",
		"-- materialized\nCREATE TEMP TABLE customer_spend AS",
		"-- named\nreturning_pct\n33\n(1 rows)\n",
		"error: unknown strategy \"fastest\"",
		"error: \"nope\": exercise not found",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestShellRunKeepsSessionArtifacts(t *testing.T) {
	engine := newTestEngine(t)

	output := runScript(t, engine, strings.Join([]string{
		"materialize customer_spend SELECT 1 AS x",
		"run complete-album-purchases materialized",
		"artifacts",
		"run average-customer-spend materialized",
		"artifacts",
		"run average-customer-spend named",
	}, "\n"))

	for _, want := range []string{
		"-- materialized\ncomplete_album_purchases\n3\n(1 rows)\n",
		"error: exercise \"average-customer-spend\" (materialized): artifact \"customer_spend\" already exists in this session",
		"-- named\naverage_spend\n",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
	if got := strings.Count(output, "customer_spend (1 rows)\n"); got != 2 {
		t.Fatalf("expected the shell's artifact listed twice, got %d:\n%s", got, output)
	}
	if strings.Contains(output, "album_tracks (") {
		t.Fatalf("run left its artifacts in the session:\n%s", output)
	}
}

func TestSplitWord(t *testing.T) {
	word, rest := splitWord("  query   SELECT 1  ")
	if word != "query" || rest != "SELECT 1" {
		t.Fatalf("splitWord = (%q, %q)", word, rest)
	}
	if word, rest := splitWord("exit"); word != "exit" || rest != "" {
		t.Fatalf("splitWord single = (%q, %q)", word, rest)
	}
}
