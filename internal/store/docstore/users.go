package docstore

import "vaultchat/internal/models"

// AddUser inserts a user record unconditionally; reusing an existing
// user_id overwrites the old record (last write wins).
func (s *DocStore) AddUser(userID, username, publicKey string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowStamp()
	u := &models.User{
		UserID:       userID,
		Username:     username,
		PublicKey:    publicKey,
		CreatedAt:    now,
		LastActive:   now,
		GroupsJoined: []string{},
	}
	s.doc.Users[userID] = u

	if err := s.save(); err != nil {
		return nil, err
	}
	return cloneUser(u), nil
}

// UpdateUserActivity refreshes last_active; unknown users are a no-op.
func (s *DocStore) UpdateUserActivity(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.doc.Users[userID]
	if !ok {
		return nil
	}
	u.LastActive = nowStamp()
	return s.save()
}

func (s *DocStore) GetUser(userID string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.doc.Users[userID]
	if !ok {
		return nil, false
	}
	return cloneUser(u), true
}

func (s *DocStore) GetAllUsers() map[string]*models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*models.User, len(s.doc.Users))
	for id, u := range s.doc.Users {
		out[id] = cloneUser(u)
	}
	return out
}

// cloneUser copies the record so callers never hold a pointer into the
// live document.
func cloneUser(u *models.User) *models.User {
	out := *u
	out.GroupsJoined = append([]string(nil), u.GroupsJoined...)
	if u.Metadata != nil {
		out.Metadata = make(map[string]string, len(u.Metadata))
		for k, v := range u.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
