package mysql

import (
	"errors"

	apperr "assetfin-backend/pkg/errors"

	"gorm.io/gorm"
)

// dbErr tags gorm errors with an app code, keeping the cause reachable so
// errors.Is(err, gorm.ErrRecordNotFound) still holds.
func dbErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(err, apperr.CodeNotFound, what+" not found")
	}
	return apperr.Wrap(err, apperr.CodePersistence, what)
}
