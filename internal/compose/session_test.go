package compose

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := Open(Options{Path: filepath.Join(t.TempDir(), "compose.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	statements := []string{
		`CREATE TABLE nums (n INTEGER NOT NULL)`,
		`INSERT INTO nums (n) VALUES (1), (2), (3)`,
	}
	for _, stmt := range statements {
		_, err := engine.db.Exec(stmt)
		require.NoError(t, err)
	}
	return engine
}

func newTestSession(t *testing.T, engine *Engine) *Session {
	t.Helper()

	session, err := engine.Session(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func intColumn(t *testing.T, result *ResultSet, column int) []int64 {
	t.Helper()

	values := make([]int64, 0, result.Len())
	for _, row := range result.Rows {
		value, ok := row[column].(int64)
		require.Truef(t, ok, "expected int64, got %T", row[column])
		values = append(values, value)
	}
	return values
}

func TestSessionMaterializeAndQuery(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	artifact, err := session.Materialize(ctx, "big_nums", "SELECT n FROM nums WHERE n > 1")
	require.NoError(t, err)
	require.Equal(t, "big_nums", artifact.Name)
	require.EqualValues(t, 2, artifact.Rows)
	require.False(t, artifact.CreatedAt.IsZero())

	doubled, err := session.Materialize(ctx, "doubled", "SELECT n * 2 AS n FROM {{big_nums}}")
	require.NoError(t, err)
	require.EqualValues(t, 2, doubled.Rows)

	result, err := session.QueryMaterialized(ctx, "doubled", "SELECT n FROM {{doubled}} ORDER BY n")
	require.NoError(t, err)
	require.Equal(t, []string{"n"}, result.Columns)
	require.Equal(t, []int64{4, 6}, intColumn(t, result, 0))

	joined, err := session.Query(ctx, "SELECT COUNT(*) AS c FROM {{big_nums}} JOIN nums USING (n)")
	require.NoError(t, err)
	require.Equal(t, []int64{2}, intColumn(t, joined, 0))
	require.Equal(t, map[string]any{"c": int64(2)}, joined.Row(0))

	names := make([]string, 0)
	for _, item := range session.Artifacts() {
		names = append(names, item.Name)
	}
	require.Equal(t, []string{"big_nums", "doubled"}, names)
}

func TestSessionNameConflictKeepsFirstArtifact(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	_, err := session.Materialize(ctx, "picked", "SELECT n FROM nums WHERE n = 1")
	require.NoError(t, err)

	_, err = session.Materialize(ctx, "picked", "SELECT n FROM nums")
	require.True(t, errors.Is(err, ErrNameConflict), "expected ErrNameConflict, got %v", err)

	result, err := session.QueryMaterialized(ctx, "picked", "SELECT n FROM {{picked}}")
	require.NoError(t, err)
	require.Equal(t, []int64{1}, intColumn(t, result, 0))
}

func TestSessionEngineNameConflict(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	// A temporary table created outside the artifact registry still collides.
	_, err := session.conn.ExecContext(ctx, "CREATE TEMP TABLE stray AS SELECT 1 AS n")
	require.NoError(t, err)

	_, err = session.Materialize(ctx, "stray", "SELECT n FROM nums")
	require.True(t, errors.Is(err, ErrNameConflict), "expected ErrNameConflict, got %v", err)

	var sqliteErr sqlite3.Error
	require.True(t, errors.As(err, &sqliteErr), "engine error should stay reachable")
}

func TestSessionArtifactIsSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	_, err := session.Materialize(ctx, "all_nums", "SELECT n FROM nums")
	require.NoError(t, err)

	first, err := session.Query(ctx, "SELECT n FROM {{all_nums}} ORDER BY n")
	require.NoError(t, err)

	_, err = engine.db.Exec(`INSERT INTO nums (n) VALUES (4)`)
	require.NoError(t, err)

	second, err := session.Query(ctx, "SELECT n FROM {{all_nums}} ORDER BY n")
	require.NoError(t, err)
	require.True(t, first.Equal(second), "artifact changed between reads: %v vs %v", first, second)

	live, err := session.Query(ctx, "SELECT COUNT(*) FROM nums")
	require.NoError(t, err)
	require.Equal(t, []int64{4}, intColumn(t, live, 0))
}

func TestSessionNamedBindingReadTwice(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	statement, err := ComposeNamed(
		"SELECT n FROM {{odd}} UNION ALL SELECT n FROM {{odd}}",
		Named("odd", "SELECT n FROM nums WHERE n % 2 = 1"),
	)
	require.NoError(t, err)

	result, err := session.Query(ctx, statement)
	require.NoError(t, err)
	values := intColumn(t, result, 0)
	require.Len(t, values, 4)
	require.ElementsMatch(t, values[:2], values[2:])
}

func TestSessionReferenceAfterClose(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	session, err := engine.Session(ctx)
	require.NoError(t, err)
	_, err = session.Materialize(ctx, "kept", "SELECT n FROM nums")
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err = session.QueryMaterialized(ctx, "kept", "SELECT * FROM {{kept}}")
	require.True(t, errors.Is(err, ErrReference), "expected ErrReference, got %v", err)
	require.True(t, errors.Is(err, ErrSessionClosed), "expected ErrSessionClosed, got %v", err)

	next := newTestSession(t, engine)
	_, err = next.Query(ctx, "SELECT * FROM kept")
	require.True(t, errors.Is(err, ErrReference), "expected ErrReference from engine, got %v", err)
	require.Contains(t, err.Error(), "no such table: kept")

	_, err = next.Query(ctx, "SELECT * FROM {{kept}}")
	require.True(t, errors.Is(err, ErrReference), "expected ErrReference, got %v", err)
}

func TestSessionDrop(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	_, err := session.Materialize(ctx, "short_lived", "SELECT n FROM nums")
	require.NoError(t, err)
	require.NoError(t, session.Drop(ctx, "short_lived"))
	require.Empty(t, session.Artifacts())

	err = session.Drop(ctx, "short_lived")
	require.True(t, errors.Is(err, ErrReference), "expected ErrReference, got %v", err)

	// The name is free again once dropped.
	_, err = session.Materialize(ctx, "short_lived", "SELECT n FROM nums WHERE n = 3")
	require.NoError(t, err)
}

func TestSessionEngineErrors(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)
	ctx := context.Background()

	_, err := session.Query(ctx, "SELEC n FROM nums")
	require.True(t, errors.Is(err, ErrEngine), "expected ErrEngine, got %v", err)
	require.False(t, errors.Is(err, ErrReference))

	_, err = session.Query(ctx, "SELECT missing_column FROM nums")
	require.True(t, errors.Is(err, ErrReference), "expected ErrReference, got %v", err)

	_, err = session.Materialize(ctx, "bad name", "SELECT 1")
	require.True(t, errors.Is(err, ErrInvalidName), "expected ErrInvalidName, got %v", err)

	// A failed creation leaves no artifact behind.
	_, err = session.Materialize(ctx, "broken", "SELECT nope FROM nums")
	require.Error(t, err)
	require.Empty(t, session.Artifacts())
}

// executeEachStrategy runs question under every strategy, each in a fresh
// session, requires identical result sets and returns them.
func executeEachStrategy(t *testing.T, engine *Engine, question Question) []*ResultSet {
	t.Helper()
	ctx := context.Background()

	var baseline []*ResultSet
	for _, strategy := range Strategies {
		plan, err := Compose(question, strategy)
		require.NoError(t, err)

		err = engine.WithSession(ctx, func(session *Session) error {
			results, err := session.Execute(ctx, plan)
			if err != nil {
				return err
			}
			if baseline == nil {
				baseline = results
				return nil
			}
			require.Len(t, results, len(baseline))
			for idx := range results {
				require.Truef(t, baseline[idx].Equal(results[idx]), "%s statement %d: %v != %v", strategy, idx, results[idx], baseline[idx])
			}
			return nil
		})
		require.NoErrorf(t, err, "strategy %s", strategy)
	}
	return baseline
}

func TestSessionExecuteEquivalence(t *testing.T) {
	engine := newTestEngine(t)

	results := executeEachStrategy(t, engine, Question{
		Steps: []Binding{
			Named("odd", "SELECT n FROM nums WHERE n % 2 = 1"),
			Named("odd_total", "SELECT SUM(n) AS total FROM {{odd}}"),
		},
		Final:     "SELECT n, (SELECT total FROM {{odd_total}}) AS total FROM {{odd}} ORDER BY n",
		FollowUps: []string{"SELECT COUNT(*) AS odd_count FROM {{odd}}"},
	})

	require.Len(t, results, 2)
	require.Equal(t, "n | total\n1 | 4\n3 | 4", results[0].String())
	require.Equal(t, "odd_count\n2", results[1].String())
}

func TestSessionExecuteEquivalenceForDates(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.db.Exec(`CREATE TABLE events (id INTEGER NOT NULL, happened_at DATETIME)`)
	require.NoError(t, err)
	for idx, at := range []time.Time{
		time.Date(2021, time.March, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2022, time.January, 10, 12, 30, 0, 0, time.UTC),
		time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := engine.db.Exec(`INSERT INTO events (id, happened_at) VALUES (?, ?)`, idx+1, at)
		require.NoError(t, err)
	}

	results := executeEachStrategy(t, engine, Question{
		Steps: []Binding{
			Named("recent", "SELECT id, happened_at FROM events WHERE id < 3"),
		},
		Final: "SELECT happened_at FROM {{recent}} ORDER BY id",
	})

	require.Equal(t, "happened_at\n2021-03-04 00:00:00+00:00\n2022-01-10 12:30:00+00:00", results[0].String())
	require.IsType(t, "", results[0].Rows[0][0])
}

func TestSessionExecuteEquivalenceForSelfJoin(t *testing.T) {
	engine := newTestEngine(t)

	results := executeEachStrategy(t, engine, Question{
		Steps: []Binding{
			Named("spend", "SELECT n AS s FROM nums"),
		},
		Final: "SELECT COUNT(*) AS n FROM {{spend}} a JOIN {{spend}} AS b ON a.s < b.s",
	})

	require.Equal(t, "n\n3", results[0].String())
}

func TestSessionInterruptedMaterializeLeavesNoTable(t *testing.T) {
	engine := newTestEngine(t)
	session := newTestSession(t, engine)

	ctx, cancel := context.WithCancel(context.Background())
	session.afterCreate = func(string) { cancel() }

	_, err := session.Materialize(ctx, "interrupted", "SELECT n FROM nums")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, session.Artifacts())

	session.afterCreate = nil
	_, err = session.Query(context.Background(), "SELECT * FROM temp.interrupted")
	require.Truef(t, errors.Is(err, ErrReference), "expected the table to be dropped, got %v", err)

	// The name is free again on the same connection.
	_, err = session.Materialize(context.Background(), "interrupted", "SELECT n FROM nums")
	require.NoError(t, err)
}

func TestWithSessionClosesOnError(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	var captured *Session
	boom := errors.New("boom")
	err := engine.WithSession(ctx, func(session *Session) error {
		captured = session
		if _, err := session.Materialize(ctx, "tmp", "SELECT n FROM nums"); err != nil {
			return err
		}
		return boom
	})
	require.True(t, errors.Is(err, boom))
	require.True(t, captured.closed)

	_, err = captured.Query(ctx, "SELECT 1")
	require.True(t, errors.Is(err, ErrSessionClosed))
}
