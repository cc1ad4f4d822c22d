package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateCode is returned when inserting a coupon whose code is taken.
	ErrDuplicateCode = errors.New("coupon code already exists")

	// ErrLimitReached is returned by the conditional usage increment when the
	// coupon's total usage limit is already exhausted.
	ErrLimitReached = errors.New("usage limit reached")
)
