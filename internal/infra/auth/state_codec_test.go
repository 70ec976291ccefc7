package auth

import (
	"testing"
	"time"

	"reviewhub/config"
	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *hmacStateCodec {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.State = secret

	codec, err := NewStateCodec(cfg)
	require.NoError(t, err)

	return codec.(*hmacStateCodec)
}

func newTestState() *entity.ConnectState {
	return &entity.ConnectState{
		TenantID:   uuid.New(),
		AccountID:  uuid.New(),
		ReturnPath: "/settings/connections",
		IssuedAt:   time.Now().Unix(),
	}
}

func TestStateCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	state := newTestState()

	token, err := codec.Encode(state)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded := codec.Decode(token)
	require.NotNil(t, decoded)
	assert.Equal(t, state.TenantID, decoded.TenantID)
	assert.Equal(t, state.AccountID, decoded.AccountID)
	assert.Equal(t, state.ReturnPath, decoded.ReturnPath)
	assert.Equal(t, state.IssuedAt, decoded.IssuedAt)
}

func TestStateCodec_WrongSecret(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "other-secret")

	token, err := codec.Encode(newTestState())
	require.NoError(t, err)

	assert.Nil(t, other.Decode(token))
}

func TestStateCodec_TamperedPayload(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	token, err := codec.Encode(newTestState())
	require.NoError(t, err)

	// Flipping any single character of the encoded segment must invalidate
	// the signature.
	for i := 0; i < len(token) && token[i] != '.'; i++ {
		tampered := []byte(token)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		assert.Nil(t, codec.Decode(string(tampered)), "tampered index %d", i)
	}
}

func TestStateCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	cases := []string{
		"",
		"no-separator",
		".signature-only",
		"payload-only.",
		"not-base64!!.deadbeef",
		"aGVsbG8.not-hex",
	}
	for _, token := range cases {
		assert.Nil(t, codec.Decode(token), "token %q", token)
	}
}

func TestStateCodec_StaleState(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	state := newTestState()
	state.IssuedAt = time.Now().Add(-time.Hour).Unix()

	token, err := codec.Encode(state)
	require.NoError(t, err)

	assert.Nil(t, codec.Decode(token))
}

func TestStateCodec_MissingTenant(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	state := newTestState()
	state.TenantID = uuid.Nil

	token, err := codec.Encode(state)
	require.NoError(t, err)

	assert.Nil(t, codec.Decode(token))
}

func TestNewStateCodec_RequiresSecret(t *testing.T) {
	_, err := NewStateCodec(&config.Config{})
	require.Error(t, err)
}
