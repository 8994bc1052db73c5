// Package cryptox hashes and verifies the shared site password with
// argon2id, so the configuration never has to hold the plain secret.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	hashPrefix = "argon2id"

	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

var b64 = base64.RawStdEncoding

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword returns an encoded hash of the form
// "argon2id$<salt>$<key>" with unpadded base64 segments.
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltLen)
	key := deriveKey(password, salt)
	return fmt.Sprintf("%s$%s$%s", hashPrefix, b64.EncodeToString(salt), b64.EncodeToString(key))
}

// VerifyPassword reports whether password matches an encoded hash produced
// by HashPassword. A malformed hash yields ErrInvalidPasswordHash.
func VerifyPassword(encoded string, password []byte) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != hashPrefix {
		return false, common.ErrInvalidPasswordHash
	}

	salt, err := b64.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", common.ErrInvalidPasswordHash, err)
	}
	want, err := b64.DecodeString(parts[2])
	if err != nil || len(want) != int(argonKeyLen) {
		return false, common.ErrInvalidPasswordHash
	}

	got := deriveKey(password, salt)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// EqualSecret compares two plain secrets in constant time.
func EqualSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
