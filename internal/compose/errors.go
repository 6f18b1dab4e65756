package compose

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrReference marks statements that name an intermediate result that is
	// undefined, expired, or out of its visibility scope.
	ErrReference = errors.New("reference error")
	// ErrNameConflict marks an attempt to reuse a name that is still live.
	ErrNameConflict = errors.New("name conflict")
	// ErrEngine marks failures surfaced by the database engine.
	ErrEngine = errors.New("engine error")

	ErrInvalidName   = errors.New("invalid name")
	ErrSessionClosed = errors.Mark(errors.New("session closed"), ErrReference)
)

// classify marks an engine error with the taxonomy sentinel it belongs to.
// The message is left untouched so callers see exactly what the engine said.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
			return errors.Mark(err, ErrReference)
		case strings.Contains(msg, "already exists"):
			return errors.Mark(err, ErrNameConflict)
		}
	}
	return errors.Mark(err, ErrEngine)
}
