package repository

import "errors"

// Sentinel kinds for watchlist errors.
var (
	ErrNotFound     = errors.New("address not found")
	ErrInvalidLimit = errors.New("invalid watchlist limit")
)
