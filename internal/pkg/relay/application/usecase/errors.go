package usecase

import (
	"errors"
	"fmt"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("relay use case persistence error")

// ErrLimitConfiguration indicates that neither an active subscription nor the
// Free tier could be resolved. This is an operator-facing configuration
// fault, not a user fault, and fails closed except where documented.
var ErrLimitConfiguration = errors.New("usage limits misconfigured: no Free tier")
