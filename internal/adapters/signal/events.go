package signal

// Wire event names. The set is closed: unknown types are logged and
// ignored, never guessed at.
const (
	EvtJoinRequest     = "join-request"
	EvtJoinApproved    = "join-approved"
	EvtJoinRejected    = "join-rejected"
	EvtRequestReceived = "request-received"
	EvtJoin            = "join"
	EvtJoined          = "joined"
	EvtDisconnected    = "disconnected"
	EvtCodeChange      = "code-change"
	EvtSyncCode        = "sync-code"
	EvtSyncStdin       = "sync-stdin"
	EvtChatMessage     = "chat-message"
	EvtGroupMessage    = "group-message"
	EvtEndMeeting      = "end-meeting"
	EvtPingRoom        = "ping-room"
	EvtPongRoom        = "pong-room"
	EvtRoomCheck       = "room-check"
	EvtRoomCheckEcho   = "room-check-echo"
)
