package domain

import "time"

// JoinRequest is one queued admission request awaiting a host decision.
// It lives in a per-room ordered queue, at most one entry per ConnID,
// and must be purged when its connection disconnects.
type JoinRequest struct {
	ConnID         ConnID
	DisplayName    string
	ExternalUserID string
	RoomID         RoomID
	EnqueuedAt     time.Time
}
