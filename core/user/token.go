package user

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
)

// makeResetToken returns a 64-char hex token backed by 256 bits of CSPRNG entropy.
func makeResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	return hex.EncodeToString(buf), nil
}
