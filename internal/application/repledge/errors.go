package repledge

import "errors"

var (
	ErrNotFound         = errors.New("Repledge not found")
	ErrAlreadyClosed    = errors.New("Repledge is already closed")
	ErrBankNotFound     = errors.New("Bank not found")
	ErrInvalidPrincipal = errors.New("Principal must be greater than zero")
	ErrInvalidRate      = errors.New("Interest rate must not be negative")
)
