package partners

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	credentialPrefix    = "lgp_"
	credentialBytes     = 32
	credentialPrefixLen = 12 // "lgp_" + 8 hex chars
)

// GenerateCredential mints a new partner credential. The plaintext is
// returned once to the operator; only the hash and display prefix are stored.
func GenerateCredential() (plaintext, hash, prefix string, err error) {
	buf := make([]byte, credentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}
	plaintext = credentialPrefix + hex.EncodeToString(buf)
	return plaintext, HashKey(plaintext), plaintext[:credentialPrefixLen], nil
}

// HashKey returns the lookup digest of a plaintext credential.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// DisplayPrefix returns a loggable prefix of a presented key.
func DisplayPrefix(presented string) string {
	if len(presented) <= credentialPrefixLen {
		return presented
	}
	return presented[:credentialPrefixLen]
}
