package compose

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/cockroachdb/errors"
)

// Artifact is a materialized intermediate result owned by a session.
type Artifact struct {
	Name       string
	Definition string
	Rows       int64
	CreatedAt  time.Time
}

// Session is one client context on a pinned connection. Its materialized
// artifacts are temporary tables private to that connection; they are
// created explicitly, read any number of times, and dropped by Close.
//
// A Session is not safe for concurrent use: statements are issued one at a
// time and each completes before the next starts.
type Session struct {
	conn      *sql.Conn
	artifacts map[string]Artifact
	order     []string
	closed    bool

	// afterCreate, when set, runs between creating an artifact's table and
	// counting its rows. Tests use it to interrupt creation.
	afterCreate func(name string)
}

func newSession(conn *sql.Conn) *Session {
	return &Session{
		conn:      conn,
		artifacts: make(map[string]Artifact),
	}
}

// Materialize executes definition once and stores its rows as a temporary
// table called name. The definition may read earlier artifacts through
// placeholders. A live artifact with the same name fails the call with
// ErrNameConflict and is left as it was.
func (s *Session) Materialize(ctx context.Context, name, definition string) (Artifact, error) {
	if s.closed {
		return Artifact{}, ErrSessionClosed
	}
	if err := validateName(name); err != nil {
		return Artifact{}, err
	}
	if _, ok := s.artifacts[name]; ok {
		return Artifact{}, errors.Wrapf(ErrNameConflict, "artifact %q already exists in this session", name)
	}

	resolved, err := s.resolve(definition)
	if err != nil {
		return Artifact{}, err
	}
	if _, err := s.conn.ExecContext(ctx, createTempTable(name, resolved)); err != nil {
		return Artifact{}, classify(err)
	}

	if s.afterCreate != nil {
		s.afterCreate(name)
	}

	// CREATE TABLE ... AS does not report changes, so count explicitly.
	var count int64
	err = ctx.Err()
	if err == nil {
		err = s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM temp.`+name).Scan(&count)
	}
	if err != nil {
		// ctx may be what failed; the untracked table must go regardless.
		if _, dropErr := s.conn.ExecContext(context.Background(), `DROP TABLE IF EXISTS temp.`+name); dropErr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(dropErr, "drop artifact %q", name))
		}
		return Artifact{}, classify(err)
	}

	artifact := Artifact{
		Name:       name,
		Definition: definition,
		Rows:       count,
		CreatedAt:  time.Now().UTC(),
	}
	s.artifacts[name] = artifact
	s.order = append(s.order, name)
	return artifact, nil
}

// QueryMaterialized runs followUp after checking that name is a live
// artifact of this session.
func (s *Session) QueryMaterialized(ctx context.Context, name, followUp string) (*ResultSet, error) {
	if s.closed {
		return nil, errors.Wrapf(ErrSessionClosed, "artifact %q", name)
	}
	if _, ok := s.artifacts[name]; !ok {
		return nil, errors.Wrapf(ErrReference, "artifact %q is not live in this session", name)
	}
	return s.Query(ctx, followUp)
}

// Query runs one read statement. Placeholders resolve to live artifacts.
func (s *Session) Query(ctx context.Context, statement string, args ...any) (*ResultSet, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	resolved, err := s.resolve(statement)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, resolved, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	result, err := scanResultSet(rows)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// Execute runs plan and returns one result set per statement. Artifacts of a
// materialized plan are created first and stay live until the session ends.
func (s *Session) Execute(ctx context.Context, plan Plan) ([]*ResultSet, error) {
	for _, artifact := range plan.Artifacts {
		if _, err := s.Materialize(ctx, artifact.Name, artifact.Definition); err != nil {
			return nil, err
		}
	}

	results := make([]*ResultSet, 0, len(plan.Statements))
	for _, statement := range plan.Statements {
		result, err := s.Query(ctx, statement)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Drop removes a live artifact before the session ends.
func (s *Session) Drop(ctx context.Context, name string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if _, ok := s.artifacts[name]; !ok {
		return errors.Wrapf(ErrReference, "artifact %q is not live in this session", name)
	}
	if _, err := s.conn.ExecContext(ctx, `DROP TABLE temp.`+name); err != nil {
		return classify(err)
	}
	s.forget(name)
	return nil
}

// Artifacts lists live artifacts in creation order.
func (s *Session) Artifacts() []Artifact {
	artifacts := make([]Artifact, 0, len(s.order))
	for _, name := range s.order {
		artifacts = append(artifacts, s.artifacts[name])
	}
	return artifacts
}

// Close drops every live artifact and releases the connection. The
// connection goes back to the pool, so artifacts must not outlive the
// session on it. Close is idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	ctx := context.Background()
	for idx := len(s.order) - 1; idx >= 0; idx-- {
		name := s.order[idx]
		if _, dropErr := s.conn.ExecContext(ctx, `DROP TABLE IF EXISTS temp.`+name); dropErr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(dropErr, "drop artifact %q", name))
		}
	}
	s.artifacts = make(map[string]Artifact)
	s.order = nil

	if err != nil {
		// Discard the connection instead of pooling one with leftovers;
		// reporting it bad closes it.
		_ = s.conn.Raw(func(any) error { return driver.ErrBadConn })
		return err
	}
	return s.conn.Close()
}

func (s *Session) forget(name string) {
	delete(s.artifacts, name)
	for idx, candidate := range s.order {
		if candidate == name {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
			break
		}
	}
}

func (s *Session) resolve(sql string) (string, error) {
	return substitute(trimStatement(sql), func(name string) (string, error) {
		if _, ok := s.artifacts[name]; !ok {
			return "", errors.Wrapf(ErrReference, "artifact %q is not live in this session", name)
		}
		return name, nil
	})
}
