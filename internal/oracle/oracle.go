// Package oracle defines the ports to the external encryption and
// proof-verification services.
//
// The registry never decrypts anything itself. It stores opaque handles and, when
// a caller submits a clear value with a proof, asks the verifier whether the pair
// is authentic for the stored handle. Implementations are injected capabilities;
// tests substitute fakes.
package oracle

import (
	"context"
	"encoding/binary"
	"encoding/hex"

	dErrors "veilcredit/pkg/domain-errors"
)

// EncryptedHandle is an opaque reference to a value encrypted under a scheme
// supporting computation without decryption. It carries no plaintext locally.
type EncryptedHandle []byte

func (h EncryptedHandle) String() string {
	return hex.EncodeToString(h)
}

// AdmissionProof is evidence that a newly submitted encrypted value is
// well-formed and was produced for this registry's context.
type AdmissionProof []byte

// DecryptionProof binds a claimed clear value to a specific previously-stored
// encrypted handle, checkable without the decryption key.
type DecryptionProof []byte

// ClearValueEncoding is the wire encoding of a decrypted amount as returned by
// the decryption service: a big-endian uint64.
type ClearValueEncoding []byte

// Verifier validates submissions against opaque cryptographic material.
// Calls may be slow; callers must not hold entity locks while a call is in flight.
// The boolean is the verdict; the error reports verifier unavailability only.
type Verifier interface {
	// VerifyCiphertext checks that an encrypted input and its admission proof
	// are authentic for this registry's context.
	VerifyCiphertext(ctx context.Context, handle EncryptedHandle, proof AdmissionProof) (bool, error)

	// VerifyDecryption checks that a clear value encoding is the decryption of
	// the given handle, as attested by the proof.
	VerifyDecryption(ctx context.Context, handle EncryptedHandle, clear ClearValueEncoding, proof DecryptionProof) (bool, error)
}

// Registrar marks handles as eligible for the public reveal protocol. Issuance
// registers every admitted handle so the decryption service will later agree to
// produce a clear value for it.
type Registrar interface {
	AllowPublicDecryption(ctx context.Context, handle EncryptedHandle) error
}

// EncodeAmount produces the canonical clear value encoding for an amount.
func EncodeAmount(amount uint64) ClearValueEncoding {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, amount)
	return buf
}

// DecodeAmount parses a verified clear value encoding.
func DecodeAmount(clear ClearValueEncoding) (uint64, error) {
	if len(clear) != 8 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "clear value encoding must be 8 bytes")
	}
	return binary.BigEndian.Uint64(clear), nil
}
