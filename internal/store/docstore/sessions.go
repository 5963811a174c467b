package docstore

import (
	"time"

	"vaultchat/internal/models"
)

// AddSession inserts or overwrites the session for a connection id,
// stamping both session_start and last_activity.
func (s *DocStore) AddSession(connID string, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowStamp()
	sess.SessionStart = now
	sess.LastActivity = now
	s.doc.Sessions[connID] = &sess
	return s.save()
}

// UpdateSession merges the non-empty fields of update into an existing
// session and refreshes last_activity. Unknown ids are a no-op.
func (s *DocStore) UpdateSession(connID string, update models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.doc.Sessions[connID]
	if !ok {
		return nil
	}
	if update.Username != "" {
		sess.Username = update.Username
	}
	if update.UserID != "" {
		sess.UserID = update.UserID
	}
	if update.PublicKey != "" {
		sess.PublicKey = update.PublicKey
	}
	sess.LastActivity = nowStamp()
	return s.save()
}

// RemoveSession deletes the session; unknown ids are a no-op and do not
// rewrite the file.
func (s *DocStore) RemoveSession(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Sessions[connID]; !ok {
		return nil
	}
	delete(s.doc.Sessions, connID)
	return s.save()
}

func (s *DocStore) GetSession(connID string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.doc.Sessions[connID]
	if !ok {
		return nil, false
	}
	out := *sess
	return &out, true
}

func (s *DocStore) GetAllSessions() map[string]*models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*models.Session, len(s.doc.Sessions))
	for id, sess := range s.doc.Sessions {
		c := *sess
		out[id] = &c
	}
	return out
}

// CleanupExpiredSessions removes every session whose last_activity is
// older than now-maxAge. A last_activity that does not parse counts as
// expired; a corrupt timestamp must never keep a session alive forever.
// The file is rewritten once, and only when something was removed.
func (s *DocStore) CleanupExpiredSessions(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range s.doc.Sessions {
		at, err := time.Parse(time.RFC3339Nano, sess.LastActivity)
		if err != nil || at.Before(cutoff) {
			delete(s.doc.Sessions, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save()
}
