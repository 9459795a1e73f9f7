package persistence

import (
	"fmt"

	"github.com/mdm/backend/internal/domain/shared"
)

// serviceUnavailable wraps a storage failure as a retryable domain error.
func serviceUnavailable(op string, err error) *shared.DomainError {
	return shared.ServiceUnavailable(fmt.Sprintf("%s: %v", op, err))
}
