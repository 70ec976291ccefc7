package service

import "reviewhub/internal/domain/entity"

// StateCodec signs and verifies the state payload carried through the
// delegated-authorization redirect, making the handshake stateless and
// tamper-proof.
type StateCodec interface {
	// Encode serializes and signs the payload into an opaque token.
	Encode(state *entity.ConnectState) (string, error)

	// Decode verifies the token and returns its payload. It returns nil on
	// any failure (malformed structure, bad signature, missing fields,
	// stale issue time) and never panics; the caller treats nil exactly
	// like an invalid request.
	Decode(token string) *entity.ConnectState
}
