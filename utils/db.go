package utils

import (
	"errors"

	"gorm.io/gorm"
)

// IsDuplicateKey reports a unique-constraint violation. Requires the
// connection to be opened with gorm.Config{TranslateError: true}.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports a First/Take miss.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
