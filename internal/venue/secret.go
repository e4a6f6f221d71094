package venue

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// AccessKeyLen is the length of generated access keys.
const AccessKeyLen = 32

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// NewAccessKey returns 32 URL-safe random characters (24 bytes of entropy).
func NewAccessKey() (string, error) {
	buf := make([]byte, AccessKeyLen*3/4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// KeyMatches compares the supplied key with the stored one byte-for-byte in
// constant time.
func KeyMatches(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// ValidPIN reports whether pin is exactly four digits.
func ValidPIN(pin string) bool { return pinPattern.MatchString(pin) }

// HashPIN returns the bcrypt hash stored in venue.pin_hash.
func HashPIN(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// PINMatches reports whether pin matches the stored hash.
func PINMatches(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
