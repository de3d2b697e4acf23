package service

import (
	"errors"
	"fmt"

	"github.com/ridwanfathin/market-receipts-service/internal/extract"
	"github.com/ridwanfathin/market-receipts-service/internal/scanner"
)

// ServiceError represents an error in the service layer
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsUnreadableReceipt reports whether err means the uploaded file could not be
// turned into a purchase, as opposed to an internal failure.
func IsUnreadableReceipt(err error) bool {
	var parseErr *scanner.ParseError
	var extractErr *extract.ExtractError
	return errors.As(err, &parseErr) || errors.As(err, &extractErr)
}
