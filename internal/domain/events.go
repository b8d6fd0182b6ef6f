package domain

import "github.com/google/uuid"

// MarkAction is the kind of mark mutation carried by a MarkEvent.
type MarkAction string

const (
	MarkActionCreated MarkAction = "created"
	MarkActionUpdated MarkAction = "updated"
	MarkActionDeleted MarkAction = "deleted"
)

// MarkEvent is an ephemeral mutation event handed to the dispatcher after a
// successful write. It is fire-and-forget: dispatch failures never roll back
// or retry the originating write.
type MarkEvent struct {
	Action  MarkAction
	Mark    *Mark
	ActorID uuid.UUID
	// BaseURL, when set, is used to resolve relative photo references during
	// serialization. Empty means the dispatcher's configured base URL.
	BaseURL string
}

// MarkEventPublisher decouples the write side from whoever fans events out.
// Implementations must not block the caller on delivery.
type MarkEventPublisher interface {
	PublishMarkEvent(event MarkEvent)
}
