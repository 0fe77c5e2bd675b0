package auth

import (
	"errors"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist, so a login for
// an unknown email costs the same as one with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("click-store-dummy"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	h, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash. A mismatch is
// (false, nil); a malformed hash is returned as an error.
func CheckPassword(hash, password string) (bool, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	err := bcrypt.CompareHashAndPassword([]byte(hash), pw)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// BurnPasswordCheck runs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
