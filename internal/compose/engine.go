package compose

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultPath         = "musicstore.db"
	defaultMaxOpenConns = 4
	defaultBusyTimeout  = 5 * time.Second
)

// Options configures the engine connection pool.
type Options struct {
	// Path is a SQLite file path. In-memory databases are per connection in
	// SQLite, so sessions would not see each other's base tables there.
	Path         string
	MaxOpenConns int
	BusyTimeout  time.Duration
}

// Engine is the external relational engine as seen by the composition layer.
// It owns the connection pool; all composition work happens in sessions.
type Engine struct {
	db *sql.DB
}

func Open(opts Options) (*Engine, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = defaultPath
	}
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	busyTimeout := opts.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	db, err := sql.Open("sqlite3", dsn(path, busyTimeout))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &Engine{db: db}, nil
}

// dsn applies the busy timeout per connection; a PRAGMA on the pool would
// only reach whichever connection happened to run it.
func dsn(path string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=" + strconv.FormatInt(busyTimeout.Milliseconds(), 10)
}

func (e *Engine) Close() error {
	return e.db.Close()
}

// Session pins one connection for the lifetime of the returned session.
// Callers must Close it.
func (e *Engine) Session(ctx context.Context) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return newSession(conn), nil
}

// WithSession runs fn in a fresh session and always tears the session down,
// whether or not fn succeeds.
func (e *Engine) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	session, err := e.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, session.Close())
	}()
	return fn(session)
}
