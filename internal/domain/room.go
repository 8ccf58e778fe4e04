package domain

type RoomID string

// HostRef is the directory's record of a room's live host connection.
// At most one non-empty binding exists per room at any time.
type HostRef struct {
	ConnID         ConnID
	DisplayName    string
	ExternalUserID string
}
