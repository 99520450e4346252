package security

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Refresh tokens are stored as salted hashes so a leaked sessions table
// yields no usable credentials. bcrypt only reads the first 72 bytes of its
// input and a user's JWTs can share that prefix, so the token is reduced to
// a sha256 digest first and the digest is what bcrypt salts.

func HashRefreshToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(digest(token), bcrypt.DefaultCost)
	return string(h), err
}

func CheckRefreshToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(token)) == nil
}

func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
