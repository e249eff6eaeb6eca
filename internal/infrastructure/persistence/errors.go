package persistence

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// storeErrors maps translated GORM errors onto domain errors for one
// operation. Nil entries leave the error to the generic wrapping.
type storeErrors struct {
	notFound   error
	duplicate  error
	foreignKey error
}

// translate converts err into a domain error where the store outcome has a
// domain meaning, and wraps it with op otherwise.
func (m storeErrors) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case m.notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return m.notFound
	case m.duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return m.duplicate
	case m.foreignKey != nil && (errors.Is(err, gorm.ErrForeignKeyViolated) || isSQLiteRestrict(err)):
		return m.foreignKey
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isSQLiteRestrict reports an ON DELETE RESTRICT violation on sqlite, which
// surfaces as a trigger constraint rather than SQLITE_CONSTRAINT_FOREIGNKEY.
func isSQLiteRestrict(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintTrigger
}

func wrap(op string, err error) error {
	return storeErrors{}.translate(op, err)
}
