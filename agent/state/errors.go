package state

import "errors"

var (
	ErrCardInvalid   = errors.New("strategy card is invalid")
	ErrEmptyCustomer = errors.New("customer id is empty")
)
