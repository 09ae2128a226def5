package entity

const (
	TypeInfo  = "info"
	TypeError = "error"
	TypeState = "state"

	ActionMove = "move"
)

// Frame is an informational or error message sent to one or more connections.
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StateFrame carries a full snapshot. Winner is nil while the round is ongoing.
type StateFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Snapshot
	Winner *string `json:"winner"`
}

func NewInfoFrame(message string) Frame {
	return Frame{Type: TypeInfo, Message: message}
}

func NewErrorFrame(message string) Frame {
	return Frame{Type: TypeError, Message: message}
}

func NewStateFrame(snapshot Snapshot, message string, winner *string) StateFrame {
	return StateFrame{
		Type:     TypeState,
		Message:  message,
		Snapshot: snapshot,
		Winner:   winner,
	}
}
