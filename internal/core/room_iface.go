package core

import (
	"github.com/dkeye/Boxcall/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Reached []domain.ConnID
	Dropped []SignalConnection
}

// RoomService is the core-facing API of a topic room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	Members() []domain.ConnID
	Has(id domain.ConnID) bool

	AddMember(conn SignalConnection)
	// RemoveMember reports whether id was a member.
	RemoveMember(id domain.ConnID) bool
	// Broadcast sends data to every member; the sender is skipped unless includeSelf.
	Broadcast(from domain.ConnID, data Frame, includeSelf bool) PublishResult
}

type RoomInfo struct {
	Name        domain.TopicName `json:"name"`
	MemberCount int              `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(name domain.TopicName) RoomService
	Get(name domain.TopicName) (RoomService, bool)
	// Join adds conn to the room, creating it when needed.
	Join(name domain.TopicName, conn SignalConnection) RoomService
	// Leave removes id from the room and drops the room once it is empty.
	Leave(name domain.TopicName, id domain.ConnID) bool
	List() []RoomInfo
}
