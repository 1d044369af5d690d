package domain

// TopicName names a room. Every topic is a device's live call session,
// so the name is the device id.
type TopicName string

// Membership is the one room a connection currently belongs to.
// Origin is the connection that created the room (the device).
type Membership struct {
	Topic  TopicName
	Origin ConnID
}

type Room struct {
	Name TopicName
}
