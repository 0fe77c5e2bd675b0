package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/clickstore/internal/common"
)

// handleBytes is the entropy of a session handle.
const handleBytes = 32

// DeriveToken computes the cart owner token for a user. It is keyed by the
// server secret and covers both the email and the stored password hash, so
// it changes whenever the password does.
func DeriveToken(secretKey []byte, email, passwordHash string) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(email))
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewHandle returns a fresh random session handle.
func NewHandle() (string, error) {
	return common.MakeRandHexString(handleBytes)
}

// HashHandle is the storage key for a session handle.
func HashHandle(handle string) string {
	sum := sha256.Sum256([]byte(handle))
	return hex.EncodeToString(sum[:])
}
