package logic

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"octodon/shared"
)

// BridgeState is the client-carried context of an in-flight OAuth dance.
// It crosses the wire between the authorize and callback steps; the server
// keeps nothing.
type BridgeState struct {
	RedirectUri string `json:"redirect_uri"`
	IssuedAt    int64  `json:"issued_at"` // epoch millis
	Sig         []byte `json:"sig,omitempty"`
}

type IStateSigner interface {
	Sign(state *BridgeState) (string, error)
	Verify(encoded string) (*BridgeState, error)
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

type stateSigner struct {
	hmacKey   []byte
	aesKey    []byte
	expiry    time.Duration
	now       func() time.Time
	randBytes func(b []byte) error
}

func NewStateSigner(cfg *shared.Config) IStateSigner {
	aesKey := sha256.Sum256([]byte(cfg.Secrets.StateSecret))
	return &stateSigner{
		hmacKey:   []byte(cfg.Secrets.StateSecret),
		aesKey:    aesKey[:],
		expiry:    time.Duration(cfg.OAuth.StateExpirySec) * time.Second,
		now:       time.Now,
		randBytes: func(b []byte) error { _, err := io.ReadFull(rand.Reader, b); return err },
	}
}

// Sign stamps the state with the current time, computes an HMAC-SHA256 over
// the canonical serialization (signature field excluded), and returns the
// whole thing base64url-encoded.
func (ss *stateSigner) Sign(state *BridgeState) (string, error) {
	if state.IssuedAt == 0 {
		state.IssuedAt = ss.now().UnixMilli()
	}
	mac, err := ss.computeMac(state)
	if err != nil {
		return "", err
	}
	signed := *state
	signed.Sig = mac
	data, err := json.Marshal(&signed)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Verify reverses Sign. The signature comparison is constant-time; the
// expiry window is enforced only after the signature checks out.
func (ss *stateSigner) Verify(encoded string) (*BridgeState, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %v", ErrStateInvalid, err)
	}
	var state BridgeState
	if err = json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: not JSON: %v", ErrStateInvalid, err)
	}
	carried := state.Sig
	state.Sig = nil
	mac, err := ss.computeMac(&state)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(carried, mac) {
		return nil, ErrStateInvalid
	}
	age := ss.now().UnixMilli() - state.IssuedAt
	if age > ss.expiry.Milliseconds() {
		return nil, ErrStateExpired
	}
	return &state, nil
}

func (ss *stateSigner) computeMac(state *BridgeState) ([]byte, error) {
	canonical := *state
	canonical.Sig = nil
	data, err := json.Marshal(&canonical)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, ss.hmacKey)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// Encrypt seals the value with AES-GCM; the random nonce is prepended to
// the ciphertext. Used where carried state must be confidential, not just
// tamper-evident.
func (ss *stateSigner) Encrypt(plain string) (string, error) {
	gcm, err := ss.newGcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if err = ss.randBytes(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (ss *stateSigner) Decrypt(encoded string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: not base64: %v", ErrStateInvalid, err)
	}
	gcm, err := ss.newGcm()
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", ErrStateInvalid
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrStateInvalid
	}
	return string(plain), nil
}

func (ss *stateSigner) newGcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(ss.aesKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
