package docstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"vaultchat/internal/crypto"
	"vaultchat/internal/models"
	"vaultchat/internal/store"
)

const docVersion = "1.0"

// DocStore keeps the whole chat document in memory and persists it to a
// single encrypted file. Every mutation re-serializes, re-encrypts and
// rewrites the entire file before returning; reads are served from
// memory.
//
// One store-wide mutex serializes every operation. The whole-document
// rewrite only stays consistent with a single writer at a time, so the
// lock must cover the full read-modify-write of each call; per-entity
// locking would let two savers clobber each other's updates.
type DocStore struct {
	mu    sync.Mutex
	path  string
	codec *crypto.Codec
	doc   *models.Document
}

var _ store.Store = (*DocStore)(nil)

// New opens the store at path, decrypting the backing file with a key
// derived from password. A missing, empty or undecryptable file starts
// a fresh empty document, which is persisted immediately.
func New(path, password string) (*DocStore, error) {
	codec, err := crypto.NewCodec(password)
	if err != nil {
		return nil, err
	}

	s := &DocStore{path: path, codec: codec}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		now := nowStamp()
		doc = &models.Document{
			Metadata: models.Metadata{CreatedAt: now, LastUpdated: now, Version: docVersion},
		}
		ensureCollections(doc)
		s.doc = doc
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.doc = doc
	return s, nil
}

// load returns nil (no error) when there is nothing usable on disk.
// A ciphertext that fails to open is treated the same as no file at
// all: the caller starts fresh rather than refusing to boot.
func (s *DocStore) load() (*models.Document, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(blob) == 0 {
		return nil, nil
	}

	doc, err := s.codec.DecryptDocument(blob)
	if err != nil {
		log.Printf("cannot decrypt %s, starting fresh: %v", s.path, err)
		return nil, nil
	}
	ensureCollections(doc)
	return doc, nil
}

// save stamps last_updated and rewrites the backing file. The caller
// must hold s.mu. On failure the in-memory document keeps the mutation;
// memory and disk stay inconsistent until the next successful save.
func (s *DocStore) save() error {
	s.doc.Metadata.LastUpdated = nowStamp()

	blob, err := s.codec.EncryptDocument(s.doc)
	if err != nil {
		return fmt.Errorf("encrypt document: %w", err)
	}
	if err := writeFile(s.path, blob, 0o600); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// ensureCollections guarantees the five top-level collections exist
// after any load path, so callers never see a nil map.
func ensureCollections(doc *models.Document) {
	if doc.Users == nil {
		doc.Users = make(map[string]*models.User)
	}
	if doc.PublicMessages == nil {
		doc.PublicMessages = []models.Message{}
	}
	if doc.Groups == nil {
		doc.Groups = make(map[string]*models.Group)
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*models.Session)
	}
}

func nowStamp() string {
	return time.Now().Format(time.RFC3339Nano)
}
