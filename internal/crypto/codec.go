package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"vaultchat/internal/models"
)

var (
	// ErrDecrypt reports that a whole-document ciphertext is malformed,
	// truncated, or was produced with a different key.
	ErrDecrypt = errors.New("document decryption failed")

	// ErrFieldDecrypt is the per-field analogue of ErrDecrypt.
	ErrFieldDecrypt = errors.New("field decryption failed")
)

// Codec seals and opens the persisted document, and individual
// message/password fields, with a key derived from the store password.
// The AEAD (XChaCha20-Poly1305) provides confidentiality plus tamper
// evidence; the random nonce is prepended to each ciphertext and the
// tag is embedded by Seal.
type Codec struct {
	aead cipher.AEAD
}

func NewCodec(password string) (*Codec, error) {
	aead, err := chacha20poly1305.NewX(DeriveKey(password))
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// EncryptDocument serializes doc and seals it as one opaque blob. The
// output carries no plaintext header; without the key it is noise.
func (c *Codec) EncryptDocument(doc *models.Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return c.seal(raw), nil
}

func (c *Codec) DecryptDocument(blob []byte) (*models.Document, error) {
	raw, err := c.open(blob)
	if err != nil {
		return nil, ErrDecrypt
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return &doc, nil
}

// EncryptField protects a single string independently of the document
// envelope, so message bodies and group passwords are never present in
// plaintext even inside the decrypted document.
func (c *Codec) EncryptField(plaintext string) string {
	return base64.StdEncoding.EncodeToString(c.seal([]byte(plaintext)))
}

func (c *Codec) DecryptField(ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFieldDecrypt, err)
	}
	raw, err := c.open(blob)
	if err != nil {
		return "", ErrFieldDecrypt
	}
	return string(raw), nil
}

func (c *Codec) seal(plaintext []byte) []byte {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil)
}

func (c *Codec) open(blob []byte) ([]byte, error) {
	if len(blob) < c.aead.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ct := blob[:c.aead.NonceSize()], blob[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, ct, nil)
}
