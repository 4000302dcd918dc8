package models

import (
	"time"

	dErrors "veilcredit/pkg/domain-errors"
)

// Listing is the aggregate root for a tradable market listing.
//
// Invariants:
//   - ID is non-empty and immutable
//   - Seller is immutable after creation
//   - PricePerUnit is positive; only the seller may change it
//   - AvailableQuantity only decreases, and only through validated purchases
//     while the listing is active
//   - Active is monotonic: deactivation is final
//
// ProjectRef is an advisory reference to the underlying certificate/project.
// It is deliberately not a foreign key: listing lifecycle is independent of
// whether the referenced certificate exists, is retired, or is revealed.
type Listing struct {
	ID                string    `json:"id"`
	ProjectRef        string    `json:"project_ref"`
	AvailableQuantity uint64    `json:"available_quantity"`
	PricePerUnit      uint64    `json:"price_per_unit"`
	Seller            string    `json:"seller"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewListing validates creation-time invariants and builds the record.
func NewListing(id, projectRef string, quantity, pricePerUnit uint64, seller string, now time.Time) (*Listing, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing id cannot be empty")
	}
	if seller == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing seller cannot be empty")
	}
	if quantity == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "quantity must be positive")
	}
	if pricePerUnit == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price per unit must be positive")
	}
	return &Listing{
		ID:                id,
		ProjectRef:        projectRef,
		AvailableQuantity: quantity,
		PricePerUnit:      pricePerUnit,
		Seller:            seller,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CanUpdatePrice checks seller authorization and price validity.
func (l *Listing) CanUpdatePrice(caller string, newPrice uint64) error {
	if caller != l.Seller {
		return dErrors.New(dErrors.CodeUnauthorized, "only the seller can update the price")
	}
	if newPrice == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "price per unit must be positive")
	}
	return nil
}

// ApplyPriceUpdate sets the new price. Call CanUpdatePrice first.
func (l *Listing) ApplyPriceUpdate(newPrice uint64, now time.Time) {
	l.PricePerUnit = newPrice
	l.UpdatedAt = now
}

// CanDeactivate checks seller authorization and that the listing is still active.
func (l *Listing) CanDeactivate(caller string) error {
	if caller != l.Seller {
		return dErrors.New(dErrors.CodeUnauthorized, "only the seller can deactivate the listing")
	}
	if !l.Active {
		return dErrors.New(dErrors.CodeInvalidState, "listing is already inactive")
	}
	return nil
}

// ApplyDeactivation marks the listing inactive. Call CanDeactivate first.
func (l *Listing) ApplyDeactivation(now time.Time) {
	l.Active = false
	l.UpdatedAt = now
}

// CanPurchase validates a purchase of quantity units with the given payment.
func (l *Listing) CanPurchase(quantity, payment uint64) error {
	if !l.Active {
		return dErrors.New(dErrors.CodeInvalidState, "listing is inactive")
	}
	if quantity == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "quantity must be positive")
	}
	if quantity > l.AvailableQuantity {
		return dErrors.New(dErrors.CodeInvalidInput, "quantity exceeds available supply")
	}
	cost, ok := mulNoOverflow(quantity, l.PricePerUnit)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "purchase cost overflows")
	}
	if payment < cost {
		return dErrors.New(dErrors.CodeInsufficientPayment, "payment does not cover quantity at current price")
	}
	return nil
}

// Cost returns quantity × PricePerUnit. Callers must have validated via
// CanPurchase, which rules out overflow.
func (l *Listing) Cost(quantity uint64) uint64 {
	return quantity * l.PricePerUnit
}

// ApplyPurchase decrements available supply. Call CanPurchase first under the
// same lock; an underflow here is an internal invariant violation.
func (l *Listing) ApplyPurchase(quantity uint64, now time.Time) error {
	if quantity > l.AvailableQuantity {
		return dErrors.New(dErrors.CodeInvariantViolation, "purchase would drive available quantity negative")
	}
	l.AvailableQuantity -= quantity
	l.UpdatedAt = now
	return nil
}

// Clone returns a copy so store snapshots cannot be mutated by callers.
func (l *Listing) Clone() *Listing {
	clone := *l
	return &clone
}

func mulNoOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}
