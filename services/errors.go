package services

import "errors"

// Domain errors surfaced by the service layer. Handlers map these onto HTTP
// status codes; anything else is a persistence failure and the transaction
// that produced it has been rolled back.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyReserved   = errors.New("user already has an active reservation")
	ErrNoCapacity        = errors.New("no available spots in this lot")
	ErrAlreadyWaitlisted = errors.New("user is already on the waitlist for this lot")
	ErrAdminProtected    = errors.New("admin accounts cannot be deleted")
	ErrSpotsOccupied     = errors.New("occupied spots cannot be removed")
)
