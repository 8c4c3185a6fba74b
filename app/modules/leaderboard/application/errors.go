package leaderboardservice

import (
	"errors"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
)

var (
	// ErrForbidden is returned when the principal may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrRoomNotFound is returned for an unknown room id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrTournamentNotFound is returned for an unknown tournament id.
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrInvalidMode aliases the domain error so callers need a single import.
	ErrInvalidMode = leaderboarddomain.ErrInvalidMode
)
