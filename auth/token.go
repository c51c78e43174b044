package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// RememberTokenBytes is the byte size of generated remember tokens.
const RememberTokenBytes = 32

// HMAC is a wrapper around the crypto/hmac package making it easier to use.
type HMAC struct {
	key []byte
}

// NewHMAC creates and returns a new HMAC object with the given secret key.
func NewHMAC(key string) HMAC {
	return HMAC{
		key: []byte(key),
	}
}

// Hash hashes an input string using HMAC with the secret key
// provided when the HMAC object was created. A fresh hash is built on every
// call, so concurrent requests can hash safely.
func (h HMAC) Hash(input string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(input))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// MakeRememberToken generates a remember token of the predetermined byte size.
func MakeRememberToken() (string, error) {
	b := make([]byte, RememberTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
