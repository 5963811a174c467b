package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vaultchat/internal/models"
)

// CreateBackup snapshots the current document, stamps the backup
// metadata, and writes it encrypted to path. An empty path picks a
// timestamped default next to the working directory. The primary file
// and the live document are untouched.
func (s *DocStore) CreateBackup(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = fmt.Sprintf("backup_encrypted_chat_%s.db", time.Now().Format("20060102_150405"))
	}

	snap, err := cloneDocument(s.doc)
	if err != nil {
		return "", fmt.Errorf("snapshot document: %w", err)
	}
	snap.Metadata.BackupCreated = nowStamp()
	snap.Metadata.OriginalFile = s.path

	blob, err := s.codec.EncryptDocument(snap)
	if err != nil {
		return "", fmt.Errorf("encrypt backup: %w", err)
	}
	if err := writeFile(path, blob, 0o600); err != nil {
		return "", fmt.Errorf("write backup %s: %w", path, err)
	}
	return path, nil
}

// RestoreFromBackup replaces the entire in-memory document with the
// decrypted contents of path and persists it to the primary file.
// Unlike startup load, a backup that fails to decrypt is a hard error:
// restoring must never quietly wipe the store with a fresh document.
func (s *DocStore) RestoreFromBackup(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", path, err)
	}
	doc, err := s.codec.DecryptDocument(blob)
	if err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	ensureCollections(doc)
	doc.Metadata.RestoredAt = nowStamp()
	doc.Metadata.RestoredFrom = path

	s.doc = doc
	return s.save()
}

// cloneDocument deep-copies via a JSON round trip; the document is
// JSON-shaped by construction.
func cloneDocument(doc *models.Document) (*models.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out models.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
