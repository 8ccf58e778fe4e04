// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxDisplayNameLen = 64
	MaxRoomIDLen      = 64
)

var (
	ErrDisplayNameEmpty = errors.New("display name empty")
	ErrRoomIDEmpty      = errors.New("room id empty")
)

// ConnID identifies one live connection (one websocket).
type ConnID string

// Participant is the identity bound to a connection once it has been
// admitted to a room. DisplayName and ExternalUserID are opaque
// client-asserted data; authentication happened upstream.
type Participant struct {
	ConnID         ConnID
	DisplayName    string
	ExternalUserID string
	IsHost         bool
}
