package websocket

import (
	"bytes"
	"encoding/json"
)

// invalidCell is outside the board, so ApplyMove rejects it after the turn check.
const invalidCell = -1

type Command struct {
	Action string          `json:"action"`
	Index  json.RawMessage `json:"index,omitempty"`
}

// cell - returns the requested index, or invalidCell when it is missing or not an integer.
func (that *Command) cell() int {
	raw := bytes.TrimSpace(that.Index)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return invalidCell
	}

	var index int
	if err := json.Unmarshal(raw, &index); err != nil {
		return invalidCell
	}

	return index
}
