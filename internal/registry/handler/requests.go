package handler

import (
	"encoding/hex"
	"time"

	"veilcredit/internal/oracle"
	dErrors "veilcredit/pkg/domain-errors"
)

// Binary fields travel as hex strings. Decoding failures are caller errors, not
// proof rejections.

type issueCertificateRequest struct {
	ID               string    `json:"id"`
	EncryptedAmount  string    `json:"encrypted_amount"`
	AdmissionProof   string    `json:"admission_proof"`
	PublicIdentifier uint64    `json:"public_identifier"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func (r issueCertificateRequest) decode() (oracle.EncryptedHandle, oracle.AdmissionProof, error) {
	handle, err := decodeHex("encrypted_amount", r.EncryptedAmount)
	if err != nil {
		return nil, nil, err
	}
	proof, err := decodeHex("admission_proof", r.AdmissionProof)
	if err != nil {
		return nil, nil, err
	}
	return handle, proof, nil
}

type decryptionRequest struct {
	ClearValue      string `json:"clear_value"`
	DecryptionProof string `json:"decryption_proof"`
}

func (r decryptionRequest) decode() (oracle.ClearValueEncoding, oracle.DecryptionProof, error) {
	clear, err := decodeHex("clear_value", r.ClearValue)
	if err != nil {
		return nil, nil, err
	}
	proof, err := decodeHex("decryption_proof", r.DecryptionProof)
	if err != nil {
		return nil, nil, err
	}
	return clear, proof, nil
}

type createListingRequest struct {
	ID           string `json:"id"`
	ProjectRef   string `json:"project_ref"`
	Quantity     uint64 `json:"quantity"`
	PricePerUnit uint64 `json:"price_per_unit"`
}

type updatePriceRequest struct {
	NewPrice uint64 `json:"new_price"`
}

type purchaseRequest struct {
	Quantity uint64 `json:"quantity"`
	Payment  uint64 `json:"payment"`
}

func decodeHex(field, value string) ([]byte, error) {
	if value == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, field+" is required")
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, field+" must be hex encoded")
	}
	return raw, nil
}
