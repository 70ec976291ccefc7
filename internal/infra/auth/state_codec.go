// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"reviewhub/config"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultStateMaxAge = 10 * time.Minute

// hmacStateCodec signs the authorization state with HMAC-SHA256 so the
// handshake needs no server-side session store. Token layout:
// base64url(JSON payload) + "." + hex(signature).
type hmacStateCodec struct {
	secret []byte
	maxAge time.Duration
}

// NewStateCodec is the constructor for hmacStateCodec.
func NewStateCodec(cfg *config.Config) (service.StateCodec, error) {
	if cfg.SecretKey.State == "" {
		return nil, errors.New("state secret must be provided")
	}

	maxAge := defaultStateMaxAge
	if cfg.GoogleOAuth != nil && cfg.GoogleOAuth.StateMaxAge > 0 {
		maxAge = cfg.GoogleOAuth.StateMaxAge
	}

	return &hmacStateCodec{
		secret: []byte(cfg.SecretKey.State),
		maxAge: maxAge,
	}, nil
}

// Encode serializes and signs the payload into an opaque token.
func (c *hmacStateCodec) Encode(state *entity.ConnectState) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal state payload")
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)

	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies the token and returns its payload, or nil on any failure.
// It never returns an error: a forged, tampered, malformed or stale token is
// indistinguishable from an invalid request to the caller.
func (c *hmacStateCodec) Decode(token string) *entity.ConnectState {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return nil
	}

	expected, err := hex.DecodeString(signature)
	if err != nil {
		return nil
	}

	actual, err := hex.DecodeString(c.sign(encoded))
	if err != nil {
		return nil
	}

	// Constant-time comparison; hmac.Equal also rejects length mismatches.
	if !hmac.Equal(expected, actual) {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	var state entity.ConnectState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil
	}

	if state.TenantID == uuid.Nil || state.IssuedAt == 0 {
		return nil
	}

	age := state.Age(time.Now())
	if age < 0 || age > c.maxAge {
		return nil
	}

	return &state
}

func (c *hmacStateCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))

	return hex.EncodeToString(mac.Sum(nil))
}
