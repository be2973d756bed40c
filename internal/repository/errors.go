package repository

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlErrBadIndex is returned when a FORCE INDEX hint names an index that
// does not exist on the table ("Key ... doesn't exist in table").
const mysqlErrBadIndex = 1176

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// translateList additionally maps a missing composite index on a sorted list
// query to IndexRequiredError.
func translateList(err error, index string) error {
	if err == nil {
		return nil
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrBadIndex {
		return &IndexRequiredError{Index: index, Err: err}
	}
	return translate(err)
}
