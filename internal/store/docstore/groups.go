package docstore

import (
	"crypto/sha256"
	"encoding/hex"

	"vaultchat/internal/models"
	"vaultchat/internal/store"
)

// groupID derives a stable identifier from the group name; the same
// name always maps to the same id.
func groupID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:16]
}

// CreateGroup registers a new group keyed by its unique name. A
// non-empty password is stored encrypted; an empty one is stored as the
// empty string, meaning "no password". The creator is the first member.
func (s *DocStore) CreateGroup(name, creator, password string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Groups[name]; ok {
		return nil, store.ErrGroupExists
	}

	g := &models.Group{
		ID:        groupID(name),
		Name:      name,
		Creator:   creator,
		CreatedAt: nowStamp(),
		Members:   []string{creator},
		Messages:  []models.Message{},
	}
	if password != "" {
		g.EncryptedPassword = s.codec.EncryptField(password)
	}
	s.doc.Groups[name] = g

	if err := s.save(); err != nil {
		return nil, err
	}
	return s.cloneGroup(g, false), nil
}

// JoinGroup adds username to the group's members after checking the
// password, when the group has one. Joining a group you already belong
// to succeeds without rewriting the file.
func (s *DocStore) JoinGroup(name, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.doc.Groups[name]
	if !ok {
		return store.ErrGroupNotFound
	}

	if g.EncryptedPassword != "" {
		stored, err := s.codec.DecryptField(g.EncryptedPassword)
		if err != nil {
			// Undecryptable stored password: nobody gets in.
			return store.ErrWrongPassword
		}
		if password != stored {
			return store.ErrWrongPassword
		}
	}

	for _, m := range g.Members {
		if m == username {
			return nil
		}
	}
	g.Members = append(g.Members, username)
	return s.save()
}

func (s *DocStore) LeaveGroup(name, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.doc.Groups[name]
	if !ok {
		return store.ErrGroupNotFound
	}

	for i, m := range g.Members {
		if m == username {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return s.save()
		}
	}
	return store.ErrNotMember
}

// GetGroup returns the group with its password decrypted into the
// non-serialized Password field, for internal authorization checks
// only.
func (s *DocStore) GetGroup(name string) (*models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.doc.Groups[name]
	if !ok {
		return nil, false
	}
	return s.cloneGroup(g, true), true
}

// GetAllGroups lists every group as a summary that carries no password
// material at all, only whether a password is set.
func (s *DocStore) GetAllGroups() map[string]models.GroupSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.GroupSummary, len(s.doc.Groups))
	for name, g := range s.doc.Groups {
		out[name] = models.GroupSummary{
			ID:           g.ID,
			Name:         g.Name,
			Creator:      g.Creator,
			CreatedAt:    g.CreatedAt,
			MemberCount:  len(g.Members),
			MessageCount: len(g.Messages),
			HasPassword:  g.EncryptedPassword != "",
		}
	}
	return out
}

func (s *DocStore) cloneGroup(g *models.Group, withPassword bool) *models.Group {
	out := *g
	out.Members = append([]string(nil), g.Members...)
	out.Messages = append([]models.Message(nil), g.Messages...)
	if g.Metadata != nil {
		out.Metadata = make(map[string]string, len(g.Metadata))
		for k, v := range g.Metadata {
			out.Metadata[k] = v
		}
	}
	if withPassword && g.EncryptedPassword != "" {
		// A corrupt stored password decrypts to "".
		out.Password, _ = s.codec.DecryptField(g.EncryptedPassword)
	}
	return &out
}
