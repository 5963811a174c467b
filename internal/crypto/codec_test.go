package crypto

import (
	"bytes"
	"errors"
	"testing"

	"vaultchat/internal/models"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey("secure-password-123")
	k2 := DeriveKey("secure-password-123")
	if !bytes.Equal(k1, k2) {
		t.Error("Expected identical keys for identical passwords")
	}
	if len(k1) != 32 {
		t.Errorf("Expected 32-byte key, got %d", len(k1))
	}

	k3 := DeriveKey("other-password")
	if bytes.Equal(k1, k3) {
		t.Error("Expected different keys for different passwords")
	}

	// Even the empty password must yield a usable key.
	if len(DeriveKey("")) != 32 {
		t.Error("Expected empty password to derive a key")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	codec, err := NewCodec("secure-password-123")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	doc := &models.Document{
		Users: map[string]*models.User{
			"user123": {UserID: "user123", Username: "TestUser", MessageCount: 3},
		},
		PublicMessages: []models.Message{
			{ID: "msg1", Username: "TestUser", EncryptedMessage: "blob", Room: "public"},
		},
		Groups:   map[string]*models.Group{},
		Sessions: map[string]*models.Session{},
		Metadata: models.Metadata{Version: "1.0"},
	}

	blob, err := codec.EncryptDocument(doc)
	if err != nil {
		t.Fatalf("EncryptDocument failed: %v", err)
	}

	got, err := codec.DecryptDocument(blob)
	if err != nil {
		t.Fatalf("DecryptDocument failed: %v", err)
	}

	if got.Users["user123"].Username != "TestUser" {
		t.Errorf("Expected username 'TestUser', got '%s'", got.Users["user123"].Username)
	}
	if len(got.PublicMessages) != 1 || got.PublicMessages[0].ID != "msg1" {
		t.Error("Public messages did not survive the round trip")
	}
	if got.Metadata.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", got.Metadata.Version)
	}
}

func TestDecryptDocumentWrongPassword(t *testing.T) {
	codec, _ := NewCodec("correct")
	other, _ := NewCodec("wrong")

	blob, err := codec.EncryptDocument(&models.Document{Metadata: models.Metadata{Version: "1.0"}})
	if err != nil {
		t.Fatalf("EncryptDocument failed: %v", err)
	}

	if _, err := other.DecryptDocument(blob); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt with wrong password, got %v", err)
	}
}

func TestDecryptDocumentTampered(t *testing.T) {
	codec, _ := NewCodec("secure-password-123")

	blob, err := codec.EncryptDocument(&models.Document{Metadata: models.Metadata{Version: "1.0"}})
	if err != nil {
		t.Fatalf("EncryptDocument failed: %v", err)
	}

	blob[len(blob)-1] ^= 0xff
	if _, err := codec.DecryptDocument(blob); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for tampered ciphertext, got %v", err)
	}

	// Truncated below the nonce size.
	if _, err := codec.DecryptDocument(blob[:4]); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for truncated ciphertext, got %v", err)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	codec, _ := NewCodec("secure-password-123")

	for _, plaintext := range []string{"hello", "", "group-password", "多字节 ✓"} {
		ct := codec.EncryptField(plaintext)
		if ct == plaintext && plaintext != "" {
			t.Errorf("EncryptField returned plaintext unchanged for %q", plaintext)
		}
		got, err := codec.DecryptField(ct)
		if err != nil {
			t.Fatalf("DecryptField failed for %q: %v", plaintext, err)
		}
		if got != plaintext {
			t.Errorf("Expected %q after round trip, got %q", plaintext, got)
		}
	}
}

func TestDecryptFieldCorrupt(t *testing.T) {
	codec, _ := NewCodec("secure-password-123")

	if _, err := codec.DecryptField("not base64 at all!"); !errors.Is(err, ErrFieldDecrypt) {
		t.Errorf("Expected ErrFieldDecrypt for malformed input, got %v", err)
	}

	other, _ := NewCodec("wrong")
	ct := codec.EncryptField("secret")
	if _, err := other.DecryptField(ct); !errors.Is(err, ErrFieldDecrypt) {
		t.Errorf("Expected ErrFieldDecrypt with foreign key, got %v", err)
	}
}
