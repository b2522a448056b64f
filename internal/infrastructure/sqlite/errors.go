package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/martijn/jobboard/internal/core/repository"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// translate maps driver constraint errors onto the repository sentinels so
// callers never need to know about sqlite result codes.
func translate(err error, op string) error {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("failed to %s: %w", op, repository.ErrDuplicate)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// Without extended result codes only the message tells them apart
			if strings.Contains(serr.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("failed to %s: %w", op, repository.ErrDuplicate)
			}
			return fmt.Errorf("failed to %s: %w", op, repository.ErrConstraint)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
