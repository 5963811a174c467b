package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// The salt is fixed so the same password always derives the same key;
// store files stay readable across restarts and installations. A random
// per-install salt would be stronger but would invalidate every
// existing store file, so changing it is a format break.
const (
	keySalt       = "encrypted_chat_app_salt_2024"
	keyIterations = 100000
)

// DeriveKey turns the store password into a 32-byte symmetric key using
// PBKDF2-HMAC-SHA256. Deterministic, pure; any password (including the
// empty string) yields a key.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(keySalt), keyIterations, chacha20poly1305.KeySize, sha256.New)
}
