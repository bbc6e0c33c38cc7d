package domain

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTransportUnavailable = errors.New("transport unavailable")
	ErrInvalidRoomID        = errors.New("invalid room id")
)
