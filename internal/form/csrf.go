// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF token utilities.
//
// Context
//   Admin pages and the venue PIN page embed a hidden `csrf_token` input
//   generated at render time.  The server verifies the token on POST to be
//   sure the request came from a form it rendered.  The token is stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – keyed with the process secret.
//
//   Validation checks the signature and that the timestamp falls within
//   maxAge.  No server-side sessions are needed, so any instance can verify
//   a token another instance issued as long as they share the key.
//
// Workflow
//   •  SetSecret(key)    → install the configured key at startup.
//   •  GenerateToken()   → token string for the renderer.
//   •  VerifyToken(tok)  → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour        // token valid window
	minKeyLen  = 32
)

// ErrWeakKey is returned by SetSecret for keys that are not base64url or
// shorter than 32 bytes once decoded.
var ErrWeakKey = errors.New("csrf key must be base64url and at least 32 bytes")

var (
	secretMu  sync.RWMutex
	secretKey []byte

	now = time.Now
)

// SetSecret installs the process-wide signing key.  An empty key selects a
// random per-process key, which invalidates open forms on restart and breaks
// multi-instance deployments, so it is logged as a warning.
func SetSecret(key string) error {
	if key == "" {
		b := make([]byte, minKeyLen)
		if _, err := rand.Read(b); err != nil {
			return err
		}
		zap.L().Warn("security.csrf_key not set, using a random per-process key")
		setKey(b)
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil || len(b) < minKeyLen {
		return ErrWeakKey
	}
	setKey(b)
	return nil
}

func setKey(b []byte) {
	secretMu.Lock()
	secretKey = b
	secretMu.Unlock()
}

// GenerateToken creates a new CSRF token.  Call once per form render.
func GenerateToken() (string, error) {
	sec, err := fetchSecret()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(sec, nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks.
func VerifyToken(tok string) bool {
	sec, err := fetchSecret()
	if err != nil {
		return false
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, tsBytes, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	age := now().Sub(issued)
	if age > maxAge || age < -time.Minute {
		return false
	}
	return hmac.Equal(sig, sign(sec, nonce, tsBytes))
}

func sign(sec, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

// fetchSecret returns the installed key, generating a random one when
// SetSecret was never called (tests, tools).
func fetchSecret() ([]byte, error) {
	secretMu.RLock()
	sec := secretKey
	secretMu.RUnlock()
	if sec != nil {
		return sec, nil
	}
	if err := SetSecret(""); err != nil {
		return nil, err
	}
	return fetchSecret()
}
