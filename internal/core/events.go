package core

// Inbound events.
const (
	EventIdentify      = "identify"
	EventSignout       = "signout"
	EventFetchAllUsers = "fetchAllUsers"
	EventFind          = "find"
	EventWatch         = "watch"
	EventBoxconf       = "boxconf"
	EventUnset         = "unset"
	EventCheckbox      = "checkbox"
	EventCheckdev      = "checkdev"
	EventHeartbeatPing = "heartbeatping"
	EventSpeakerID     = "speakerid"
	EventMessage       = "message"
	EventAuth          = "auth"
	EventAccept        = "accept"
	EventHang          = "hang"
	EventLeave         = "leave"
	EventSpeech        = "speech"
	EventReject        = "reject"
	EventWhoAmI        = "whoami"
)

// Outbound events.
const (
	EventRefreshUsers  = "refreshUsers"
	EventUserOnline    = "userOnline"
	EventUserOffline   = "userOffline"
	EventNoDev         = "nodev"
	EventJoin          = "join"
	EventOnlineDev     = "onlinedev"
	EventHeartbeatPong = "heartbeatpong"
	EventHangup        = "hangup"
	EventApprove       = "approve"
	EventBridge        = "bridge"
	EventSpeaking      = "speaking"
	EventFull          = "full"
	EventSpeakerBusy   = "speakerbusy"
)
