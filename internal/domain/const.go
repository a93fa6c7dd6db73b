package domain

const (
	RequesterEmailCtxKey = "wl-requesterEmail"
)

const (
	// EventChannel is the redis pub/sub channel carrying content
	// change events.
	EventChannel = "wanderlust:events"

	// DefaultRemoteKey is the redis key holding the shared AppData
	// document.
	DefaultRemoteKey = "wanderlust:appdata"
)
