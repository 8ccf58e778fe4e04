package core

import "github.com/codehuddle/codehuddle/internal/domain"

// Frame is a single encoded message bound for one connection.
type Frame []byte

// SignalConnection abstracts the messaging transport of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberDTO is the read-only member view carried in `joined` payloads
// and the rooms API (no transport fields).
type MemberDTO struct {
	ConnectionID   domain.ConnID `json:"connectionId"`
	DisplayName    string        `json:"displayName"`
	ExternalUserID string        `json:"externalUserId"`
	IsHost         bool          `json:"isHost"`
}

// RoomInfo is the read-only room view for the listing API.
type RoomInfo struct {
	RoomID      domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	HasHost     bool          `json:"hasHost"`
	Pending     int           `json:"pendingRequests"`
}
