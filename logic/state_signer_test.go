package logic

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octodon/shared"
)

func makeSigner(t *testing.T) (*stateSigner, *time.Time) {
	t.Helper()
	cfg := &shared.Config{}
	cfg.Secrets.StateSecret = "strictly-for-testing"
	cfg.OAuth.StateExpirySec = 600
	signer := NewStateSigner(cfg).(*stateSigner)
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }
	return signer, &now
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, _ := makeSigner(t)

	encoded, err := signer.Sign(&BridgeState{RedirectUri: "https://elk.zone/cb"})
	require.NoError(t, err)

	state, err := signer.Verify(encoded)
	require.NoError(t, err)
	assert.Equal(t, "https://elk.zone/cb", state.RedirectUri)
	assert.Equal(t, signer.now().UnixMilli(), state.IssuedAt)
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer, _ := makeSigner(t)

	encoded, err := signer.Sign(&BridgeState{RedirectUri: "https://elk.zone/cb"})
	require.NoError(t, err)

	// Flip one byte of the signed payload at every position
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	for ix := range data {
		tampered := make([]byte, len(data))
		copy(tampered, data)
		tampered[ix] ^= 0x01
		_, err = signer.Verify(base64.RawURLEncoding.EncodeToString(tampered))
		assert.Error(t, err, "byte %d", ix)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer, _ := makeSigner(t)
	_, err := signer.Verify("not-a-state!!!")
	assert.True(t, errors.Is(err, ErrStateInvalid))
	_, err = signer.Verify(base64.RawURLEncoding.EncodeToString([]byte("no json here")))
	assert.True(t, errors.Is(err, ErrStateInvalid))
}

func TestVerifyExpiryWindow(t *testing.T) {
	signer, now := makeSigner(t)

	encoded, err := signer.Sign(&BridgeState{RedirectUri: "https://elk.zone/cb"})
	require.NoError(t, err)
	issued := *now

	*now = issued.Add(599 * time.Second)
	_, err = signer.Verify(encoded)
	assert.NoError(t, err)

	*now = issued.Add(601 * time.Second)
	_, err = signer.Verify(encoded)
	assert.True(t, errors.Is(err, ErrStateExpired))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer, _ := makeSigner(t)
	other, _ := makeSigner(t)
	other.hmacKey = []byte("some-other-secret")

	encoded, err := signer.Sign(&BridgeState{RedirectUri: "https://elk.zone/cb"})
	require.NoError(t, err)

	_, err = other.Verify(encoded)
	assert.True(t, errors.Is(err, ErrStateInvalid))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	signer, _ := makeSigner(t)

	sealed, err := signer.Encrypt("gho_supersecrettoken")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "supersecret")

	plain, err := signer.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "gho_supersecrettoken", plain)
}

func TestDecryptRejectsTampering(t *testing.T) {
	signer, _ := makeSigner(t)

	sealed, err := signer.Encrypt("gho_supersecrettoken")
	require.NoError(t, err)

	data, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	data[len(data)-1] ^= 0x01
	_, err = signer.Decrypt(base64.RawURLEncoding.EncodeToString(data))
	assert.True(t, errors.Is(err, ErrStateInvalid))

	_, err = signer.Decrypt("@@@")
	assert.True(t, errors.Is(err, ErrStateInvalid))

	_, err = signer.Decrypt(base64.RawURLEncoding.EncodeToString([]byte("ab")))
	assert.True(t, errors.Is(err, ErrStateInvalid))
}
