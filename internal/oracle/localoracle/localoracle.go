// Package localoracle is a deterministic, secret-keyed stand-in for the external
// encryption oracle and proof verifier. It exists so the registry can run end to
// end in development and tests without a real homomorphic-encryption deployment.
//
// Handles are nonce-prefixed stream ciphertexts and proofs are HMAC-style
// Keccak tags bound to the handle, so tampering with either the handle, the
// clear value, or the proof fails verification. None of this is consulted by
// the registry's correctness logic; it only answers the Verifier/Registrar ports.
package localoracle

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"

	"veilcredit/internal/oracle"
)

const nonceLen = 16

// Domain separation prefixes for the keyed tags.
var (
	tagAdmission  = []byte("veilcredit/admit/v1")
	tagDecryption = []byte("veilcredit/reveal/v1")
	tagKeystream  = []byte("veilcredit/stream/v1")
)

// Oracle implements oracle.Verifier and oracle.Registrar, plus the client-side
// Encrypt/Decrypt round trips the external services would normally perform.
type Oracle struct {
	secret []byte

	mu          sync.RWMutex
	decryptable map[string]struct{}
}

// New builds an oracle keyed by secret. Everything derived from the same secret
// verifies across process restarts, which keeps dev environments reproducible.
func New(secret []byte) *Oracle {
	return &Oracle{
		secret:      append([]byte(nil), secret...),
		decryptable: make(map[string]struct{}),
	}
}

// Encrypt produces an opaque handle for amount together with its admission proof.
// This is the client-side step that precedes certificate issuance.
func (o *Oracle) Encrypt(amount uint64) (oracle.EncryptedHandle, oracle.AdmissionProof, error) {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	body := make([]byte, 8)
	binary.BigEndian.PutUint64(body, amount)
	stream := o.keystream(nonce)
	for i := range body {
		body[i] ^= stream[i]
	}

	handle := oracle.EncryptedHandle(append(nonce, body...))
	proof := oracle.AdmissionProof(o.tag(tagAdmission, handle))
	return handle, proof, nil
}

// Decrypt recovers the clear value encoding for a handle and produces the
// decryption proof binding the two. This is the client-side step that precedes
// reveal and retire. It refuses handles never registered for public decryption,
// mirroring the external service's access control.
func (o *Oracle) Decrypt(handle oracle.EncryptedHandle) (oracle.ClearValueEncoding, oracle.DecryptionProof, error) {
	if len(handle) != nonceLen+8 {
		return nil, nil, fmt.Errorf("malformed handle (%d bytes)", len(handle))
	}
	o.mu.RLock()
	_, ok := o.decryptable[handle.String()]
	o.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("handle %s not registered for public decryption", handle)
	}

	clear := make(oracle.ClearValueEncoding, 8)
	copy(clear, handle[nonceLen:])
	stream := o.keystream(handle[:nonceLen])
	for i := range clear {
		clear[i] ^= stream[i]
	}

	proof := oracle.DecryptionProof(o.tag(tagDecryption, handle, clear))
	return clear, proof, nil
}

// VerifyCiphertext implements oracle.Verifier.
func (o *Oracle) VerifyCiphertext(_ context.Context, handle oracle.EncryptedHandle, proof oracle.AdmissionProof) (bool, error) {
	if len(handle) != nonceLen+8 {
		return false, nil
	}
	return hmac.Equal(proof, o.tag(tagAdmission, handle)), nil
}

// VerifyDecryption implements oracle.Verifier.
func (o *Oracle) VerifyDecryption(_ context.Context, handle oracle.EncryptedHandle, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof) (bool, error) {
	if len(handle) != nonceLen+8 || len(clear) != 8 {
		return false, nil
	}
	return hmac.Equal(proof, o.tag(tagDecryption, handle, clear)), nil
}

// AllowPublicDecryption implements oracle.Registrar.
func (o *Oracle) AllowPublicDecryption(_ context.Context, handle oracle.EncryptedHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decryptable[handle.String()] = struct{}{}
	return nil
}

// tag computes a keyed Keccak tag over the domain prefix and parts.
func (o *Oracle) tag(domain []byte, parts ...[]byte) []byte {
	h := sha3.New256()
	h.Write(o.secret)
	h.Write(domain)
	for _, p := range parts {
		var sz [8]byte
		binary.BigEndian.PutUint64(sz[:], uint64(len(p)))
		h.Write(sz[:])
		h.Write(p)
	}
	return h.Sum(nil)
}

func (o *Oracle) keystream(nonce []byte) []byte {
	return o.tag(tagKeystream, nonce)
}
