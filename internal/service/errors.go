package service

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAddressNotFound = errors.New("shipping address not found")

	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")

	ErrEmptyItems        = errors.New("empty items")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInsufficientStock = errors.New("insufficient stock")
)
