// Package events carries the registry's domain notifications. Services emit an
// Event for every committed state change; sinks fan them out (Kafka in
// production, memory/log in tests and dev). Keep the model transport-agnostic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a committed registry state change.
type Type string

const (
	TypeCertificateIssued   Type = "certificate.issued"
	TypeCertificateRetired  Type = "certificate.retired"
	TypeCertificateRevealed Type = "certificate.revealed"
	TypeListingCreated      Type = "listing.created"
	TypeListingPriceUpdated Type = "listing.price_updated"
	TypeListingDeactivated  Type = "listing.deactivated"
	TypeListingPurchased    Type = "listing.purchased"
)

// Event is emitted from domain logic after a state change commits. EntityID is
// the certificate or listing id; Actor is the caller that drove the change.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	EntityID  string    `json:"entity_id"`
	Actor     string    `json:"actor"`
	Quantity  uint64    `json:"quantity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds an event with a fresh id and the given timestamp.
func New(eventType Type, entityID, actor string, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: now,
	}
}

// Publisher delivers events to a sink. Emit is called after the entity commit;
// delivery failures must not roll back registry state.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
