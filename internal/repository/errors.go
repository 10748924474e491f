package repository

import "errors"

var (
	// ErrNotFound is returned when no row matched the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user insert hits the unique
	// email constraint.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrRoomAlreadyBooked is returned when the requested date range
	// overlaps an existing booking for the room.
	ErrRoomAlreadyBooked = errors.New("room is already booked for these dates")
	// ErrDuplicatePayment is returned when a booking insert hits the
	// unique payment reference constraint.
	ErrDuplicatePayment = errors.New("payment reference already used")
)
