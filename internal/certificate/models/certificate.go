package models

import (
	"time"

	"veilcredit/internal/oracle"
	dErrors "veilcredit/pkg/domain-errors"
)

// Certificate is the aggregate root for an issued privacy-preserving certificate.
//
// Invariants:
//   - ID is non-empty, immutable, and never recycled after retirement
//   - Owner is immutable after issuance
//   - ExpiresAt is strictly after CreatedAt at issuance
//   - Retired is monotonic: false → true, never reset
//   - Revealed is monotonic: false → true, only via the reveal protocol
//   - ClearAmount is set exactly when Revealed flips to true
//
// Retirement and reveal are independent terminal markers: a certificate may be
// retired while still hidden, or revealed while still economically active.
type Certificate struct {
	ID               string                 `json:"id"`
	EncryptedAmount  oracle.EncryptedHandle `json:"encrypted_amount"`
	PublicIdentifier uint64                 `json:"public_identifier"`
	Owner            string                 `json:"owner"`
	CreatedAt        time.Time              `json:"created_at"`
	ExpiresAt        time.Time              `json:"expires_at"`
	Retired          bool                   `json:"retired"`
	RetiredAt        *time.Time             `json:"retired_at,omitempty"`
	Revealed         bool                   `json:"revealed"`
	ClearAmount      *uint64                `json:"clear_amount,omitempty"`
}

// NewCertificate validates issuance-time invariants and builds the record.
func NewCertificate(id string, handle oracle.EncryptedHandle, publicIdentifier uint64, owner string, now, expiresAt time.Time) (*Certificate, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "certificate id cannot be empty")
	}
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "certificate owner cannot be empty")
	}
	if len(handle) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "encrypted amount handle cannot be empty")
	}
	if !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expiration must be after creation time")
	}
	return &Certificate{
		ID:               id,
		EncryptedAmount:  handle,
		PublicIdentifier: publicIdentifier,
		Owner:            owner,
		CreatedAt:        now,
		ExpiresAt:        expiresAt,
	}, nil
}

// IsExpired reports whether the certificate is past its expiry at now.
func (c *Certificate) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// CanRetire checks whether the caller may retire the certificate at now.
// Use with ApplyRetirement in Execute callbacks.
func (c *Certificate) CanRetire(caller string, now time.Time) error {
	if c.Retired {
		return dErrors.New(dErrors.CodeInvalidState, "certificate is already retired")
	}
	if caller != c.Owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the owner can retire a certificate")
	}
	if c.IsExpired(now) {
		return dErrors.New(dErrors.CodeExpired, "certificate has expired")
	}
	return nil
}

// ApplyRetirement marks the certificate retired. Call CanRetire first.
func (c *Certificate) ApplyRetirement(now time.Time) {
	c.Retired = true
	c.RetiredAt = &now
}

// CanReveal checks whether the reveal transition is still pending.
func (c *Certificate) CanReveal() error {
	if c.Revealed {
		return dErrors.New(dErrors.CodeInvalidState, "certificate is already revealed")
	}
	return nil
}

// ApplyReveal records the verified clear amount. Call CanReveal first.
func (c *Certificate) ApplyReveal(amount uint64) {
	c.Revealed = true
	c.ClearAmount = &amount
}

// Clone returns a deep copy so store snapshots cannot be mutated by callers.
func (c *Certificate) Clone() *Certificate {
	clone := *c
	clone.EncryptedAmount = append(oracle.EncryptedHandle(nil), c.EncryptedAmount...)
	if c.RetiredAt != nil {
		t := *c.RetiredAt
		clone.RetiredAt = &t
	}
	if c.ClearAmount != nil {
		v := *c.ClearAmount
		clone.ClearAmount = &v
	}
	return &clone
}
