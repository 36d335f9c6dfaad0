package repository

import "errors"

// ErrInsufficientStock is returned when a conditional stock update matches no row.
var ErrInsufficientStock = errors.New("insufficient stock")
