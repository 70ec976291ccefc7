package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isUniqueConstraintViolation reports whether the write hit a unique index.
// The repositories map this to their already-exists sentinels; the review
// unique index on (tenant_id, source, external_id) is the ingestion backstop
// against concurrent syncs.
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// gorm only translates the error when TranslateError is on; fall back to
	// the PostgreSQL unique_violation patterns.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "23505")
}
