package handler

import (
	"encoding/json"
	"net/http"
	"time"

	certmodels "veilcredit/internal/certificate/models"
	listingmodels "veilcredit/internal/listing/models"
	listingservice "veilcredit/internal/listing/service"
	dErrors "veilcredit/pkg/domain-errors"
)

type certificateResponse struct {
	ID               string     `json:"id"`
	EncryptedAmount  string     `json:"encrypted_amount"`
	PublicIdentifier uint64     `json:"public_identifier"`
	Owner            string     `json:"owner"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Retired          bool       `json:"retired"`
	RetiredAt        *time.Time `json:"retired_at,omitempty"`
	Revealed         bool       `json:"revealed"`
	ClearAmount      *uint64    `json:"clear_amount,omitempty"`
}

func newCertificateResponse(cert *certmodels.Certificate) certificateResponse {
	return certificateResponse{
		ID:               cert.ID,
		EncryptedAmount:  cert.EncryptedAmount.String(),
		PublicIdentifier: cert.PublicIdentifier,
		Owner:            cert.Owner,
		CreatedAt:        cert.CreatedAt,
		ExpiresAt:        cert.ExpiresAt,
		Retired:          cert.Retired,
		RetiredAt:        cert.RetiredAt,
		Revealed:         cert.Revealed,
		ClearAmount:      cert.ClearAmount,
	}
}

type listingResponse struct {
	ID                string    `json:"id"`
	ProjectRef        string    `json:"project_ref"`
	AvailableQuantity uint64    `json:"available_quantity"`
	PricePerUnit      uint64    `json:"price_per_unit"`
	Seller            string    `json:"seller"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newListingResponse(listing *listingmodels.Listing) listingResponse {
	return listingResponse{
		ID:                listing.ID,
		ProjectRef:        listing.ProjectRef,
		AvailableQuantity: listing.AvailableQuantity,
		PricePerUnit:      listing.PricePerUnit,
		Seller:            listing.Seller,
		Active:            listing.Active,
		CreatedAt:         listing.CreatedAt,
		UpdatedAt:         listing.UpdatedAt,
	}
}

type purchaseResponse struct {
	Listing listingResponse `json:"listing"`
	Cost    uint64          `json:"cost"`
	Refund  uint64          `json:"refund"`
}

func newPurchaseResponse(result *listingservice.PurchaseResult) purchaseResponse {
	return purchaseResponse{
		Listing: newListingResponse(result.Listing),
		Cost:    result.Cost,
		Refund:  result.Refund,
	}
}

type revealResponse struct {
	ID          string `json:"id"`
	ClearAmount uint64 `json:"clear_amount"`
}

type listIDsResponse struct {
	IDs []string `json:"ids"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a domain error to its HTTP status. Unknown errors become
// opaque 500s so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	WriteJSON(w, status, errorResponse{Error: string(code), Message: message})
}
