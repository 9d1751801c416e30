package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches nothing. It is gorm's sentinel, so gorm-backed
// repositories pass their errors through unchanged and other stores translate into it.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err is a failed lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
