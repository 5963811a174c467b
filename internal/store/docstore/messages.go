package docstore

import (
	"vaultchat/internal/models"
	"vaultchat/internal/store"
)

const (
	// maxMessages caps each message list; the oldest entries are
	// evicted first once a list exceeds it.
	maxMessages = 1000

	defaultMessageLimit = 50
)

// AddPublicMessage encrypts the message body, appends it to the public
// list, evicts beyond the retention cap, bumps the sender's message
// count if the sender is a known user, and persists. The returned
// message is the at-rest form (plaintext fields cleared).
func (s *DocStore) AddPublicMessage(msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.sealMessage(msg)
	stored.Room = "public"
	s.doc.PublicMessages = capMessages(append(s.doc.PublicMessages, stored), maxMessages)

	if u, ok := s.doc.Users[msg.UserID]; ok {
		u.MessageCount++
	}

	if err := s.save(); err != nil {
		return models.Message{}, err
	}
	return stored, nil
}

// GetPublicMessages returns the most recent limit messages, oldest of
// the window first, each with its encrypted fields decrypted back into
// the plaintext view.
func (s *DocStore) GetPublicMessages(limit int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.openMessages(tail(s.doc.PublicMessages, limit))
}

// AddGroupMessage is AddPublicMessage scoped to one group's list.
func (s *DocStore) AddGroupMessage(name string, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.doc.Groups[name]
	if !ok {
		return models.Message{}, store.ErrGroupNotFound
	}

	stored := s.sealMessage(msg)
	stored.Room = name
	g.Messages = capMessages(append(g.Messages, stored), maxMessages)

	if u, ok := s.doc.Users[msg.UserID]; ok {
		u.MessageCount++
	}

	if err := s.save(); err != nil {
		return models.Message{}, err
	}
	return stored, nil
}

// GetGroupMessages returns an empty slice for unknown groups.
func (s *DocStore) GetGroupMessages(name string, limit int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.doc.Groups[name]
	if !ok {
		return []models.Message{}
	}
	return s.openMessages(tail(g.Messages, limit))
}

// sealMessage moves the plaintext fields into their encrypted
// counterparts and stamps stored_at. The plaintext never reaches disk.
func (s *DocStore) sealMessage(msg models.Message) models.Message {
	out := msg
	out.StoredAt = nowStamp()
	if msg.Content != "" {
		out.EncryptedMessage = s.codec.EncryptField(msg.Content)
		out.Content = ""
	}
	if msg.EncryptedContent != "" {
		out.DoubleEncryptedContent = s.codec.EncryptField(msg.EncryptedContent)
		out.EncryptedContent = ""
	}
	return out
}

// openMessage reverses sealMessage. A field that fails to decrypt is
// left absent rather than failing the read.
func (s *DocStore) openMessage(msg models.Message) models.Message {
	out := msg
	if msg.EncryptedMessage != "" {
		if plaintext, err := s.codec.DecryptField(msg.EncryptedMessage); err == nil {
			out.Content = plaintext
		}
		out.EncryptedMessage = ""
	}
	if msg.DoubleEncryptedContent != "" {
		if plaintext, err := s.codec.DecryptField(msg.DoubleEncryptedContent); err == nil {
			out.EncryptedContent = plaintext
		}
		out.DoubleEncryptedContent = ""
	}
	return out
}

func (s *DocStore) openMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	for i, m := range msgs {
		out[i] = s.openMessage(m)
	}
	return out
}

// capMessages drops from the front until the list fits max; append
// order (and therefore chronology) is preserved.
func capMessages(msgs []models.Message, max int) []models.Message {
	if len(msgs) <= max {
		return msgs
	}
	return msgs[len(msgs)-max:]
}

func tail(msgs []models.Message, limit int) []models.Message {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if len(msgs) <= limit {
		return msgs
	}
	return msgs[len(msgs)-limit:]
}
