package apperror

import "errors"

var ErrNotFound = errors.New("game not found")

// admission errors close the connection after one error frame.
var (
	ErrUnknownPlayer           = errors.New("user not found in user service")
	ErrNotRoomMember           = errors.New("user not in the specified room")
	ErrCollaboratorUnavailable = errors.New("collaborator service unavailable")
	ErrAlreadyConnected        = errors.New("player already connected")
	ErrSessionFull             = errors.New("session is full")
)

// protocol errors keep the connection open.
var (
	ErrInvalidJSON   = errors.New("invalid json")
	ErrUnknownAction = errors.New("unknown action")
)

// rule violations are reported to the requester only.
var (
	ErrNotParticipant = errors.New("you are not a player in this game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrCellOccupied   = errors.New("cell is already occupied")
)

// IsAdmission - reports whether err must close the connection.
func IsAdmission(err error) bool {
	return isAny(err, ErrUnknownPlayer, ErrNotRoomMember, ErrCollaboratorUnavailable, ErrAlreadyConnected, ErrSessionFull)
}

// IsProtocol - reports whether err is caused by a malformed client frame.
func IsProtocol(err error) bool {
	return isAny(err, ErrInvalidJSON, ErrUnknownAction)
}

// IsRuleViolation - reports whether err is a rejected move.
func IsRuleViolation(err error) bool {
	return isAny(err, ErrNotParticipant, ErrNotYourTurn, ErrInvalidCell, ErrCellOccupied)
}

// Message - returns the text sent to the client for a known error, or false for internal errors.
func Message(err error) (string, bool) {
	all := []error{
		ErrNotFound,
		ErrUnknownPlayer, ErrNotRoomMember, ErrCollaboratorUnavailable, ErrAlreadyConnected, ErrSessionFull,
		ErrInvalidJSON, ErrUnknownAction,
		ErrNotParticipant, ErrNotYourTurn, ErrInvalidCell, ErrCellOccupied,
	}

	for _, target := range all {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}

	return "", false
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
